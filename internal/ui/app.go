package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/circleshare/circleshare/internal/api"
	"github.com/circleshare/circleshare/internal/circle"
	"github.com/circleshare/circleshare/internal/comments"
	"github.com/circleshare/circleshare/internal/events"
	"github.com/circleshare/circleshare/internal/feed"
	"github.com/circleshare/circleshare/internal/storage"
)

type screen int

const (
	screenLogin screen = iota
	screenMain
)

type tab int

const (
	tabTheirDays tab = iota
	tabMyDays
	tabCircle
)

var tabLabels = [...]string{"Their Days", "My Days", "My Circle"}

// App is the root bubbletea model. It owns the controllers and the event
// bus; pages receive display copies of controller state after each command.
type App struct {
	client   *api.Client
	sessions storage.SessionStore
	logger   *slog.Logger

	bus       *events.Bus
	feedCtl   *feed.Controller
	commentCt *comments.Controller
	circleCtl *circle.Controller

	screen screen
	tab    tab

	login   loginPage
	feedPg  feedPage
	comPg   commentsPage
	rosterP circlePage

	showComments bool
	width        int
	height       int
	styles       Styles
}

// NewApp wires the controllers around the given client and session store.
func NewApp(client *api.Client, sessions storage.SessionStore, logger *slog.Logger) App {
	if logger == nil {
		logger = slog.Default()
	}
	styles := DefaultStyles()
	bus := events.NewBus()

	feedCtl := feed.NewController(client, feed.ViewCircle, logger)
	feedCtl.Attach(bus)

	return App{
		client:    client,
		sessions:  sessions,
		logger:    logger,
		bus:       bus,
		feedCtl:   feedCtl,
		commentCt: comments.NewController(client),
		circleCtl: circle.NewController(client, bus),
		screen:    screenLogin,
		tab:       tabTheirDays,
		login:     newLoginPage(styles),
		feedPg:    newFeedPage(styles),
		comPg:     newCommentsPage(styles),
		rosterP:   newCirclePage(styles),
		styles:    styles,
		width:     80,
		height:    24,
	}
}

// Run starts the interactive program and blocks until it exits.
func Run(client *api.Client, sessions storage.SessionStore, logger *slog.Logger) error {
	app := NewApp(client, sessions, logger)
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	app.feedCtl.Detach()
	return err
}

func (a App) Init() tea.Cmd {
	return func() tea.Msg {
		_, err := a.sessions.Token(context.Background())
		return sessionCheckedMsg{authed: err == nil}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.feedPg.width = msg.Width
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+l":
			if a.screen == screenMain {
				return a, a.logoutCmd()
			}
		}
		return a.routeKey(msg)
	}
	return a.handleResult(msg)
}

// routeKey dispatches a key press to the active page.
func (a App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.screen == screenLogin {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	if a.showComments {
		if msg.String() == "esc" {
			a.showComments = false
			a.commentCt.SetVisible(false)
			return a, nil
		}
		var cmd tea.Cmd
		a.comPg, cmd = a.comPg.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "1", "2", "3":
		return a.switchTab(tab(int(msg.String()[0] - '1')))
	case "left", "h":
		return a.switchTab((a.tab + 2) % 3)
	case "right":
		return a.switchTab((a.tab + 1) % 3)
	case "tab":
		return a.switchTab((a.tab + 1) % 3)
	}

	var cmd tea.Cmd
	if a.tab == tabCircle {
		a.rosterP, cmd = a.rosterP.Update(msg)
	} else {
		a.feedPg, cmd = a.feedPg.Update(msg)
	}
	return a, cmd
}

func (a App) switchTab(t tab) (tea.Model, tea.Cmd) {
	if t == a.tab {
		return a, nil
	}
	a.tab = t
	switch t {
	case tabCircle:
		return a, a.loadRosterCmd()
	case tabMyDays:
		return a, a.setViewCmd(feed.ViewMine)
	default:
		return a, a.setViewCmd(feed.ViewCircle)
	}
}

// handleResult processes intents emitted by pages and completions of
// asynchronous commands.
func (a App) handleResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionCheckedMsg:
		if msg.authed {
			a.screen = screenMain
			return a, tea.Batch(a.loadFeedCmd(), a.loadRosterCmd())
		}
		return a, nil

	case loginIntent:
		return a, a.loginCmd(msg.email, msg.password)
	case registerIntent:
		return a, a.registerCmd(msg.name, msg.email, msg.password)
	case loginDoneMsg, registerDoneMsg:
		var err error
		if m, ok := msg.(loginDoneMsg); ok {
			err = m.err
		} else {
			err = msg.(registerDoneMsg).err
		}
		if err != nil {
			a.login.SetError(err)
			return a, nil
		}
		a.screen = screenMain
		a.login = newLoginPage(a.styles)
		return a, tea.Batch(a.loadFeedCmd(), a.loadRosterCmd())

	case createPostIntent:
		return a, a.createPostCmd(msg.content)
	case deletePostIntent:
		return a, a.deletePostCmd(msg.postID)
	case toggleLikeIntent:
		return a, a.toggleLikeCmd(msg.postID)
	case openCommentsIntent:
		return a.openComments(msg.postID)

	case feedLoadedMsg:
		a.feedPg.SetState(a.feedCtl.Posts(), a.feedCtl.Phase(), a.feedCtl.Err())
		return a, nil
	case postCreatedMsg:
		if cmd, out := a.checkAuth(msg.err); out {
			return a, cmd
		}
		if msg.err != nil {
			a.feedPg.errMsg = msg.err.Error()
			return a, nil
		}
		a.feedPg.SetState(a.feedCtl.Posts(), a.feedCtl.Phase(), a.feedCtl.Err())
		return a, nil
	case postDeletedMsg:
		if cmd, out := a.checkAuth(msg.err); out {
			return a, cmd
		}
		if msg.err != nil {
			a.feedPg.errMsg = msg.err.Error()
			return a, nil
		}
		a.feedPg.SetState(a.feedCtl.Posts(), a.feedCtl.Phase(), a.feedCtl.Err())
		return a, nil
	case likeToggledMsg:
		if cmd, out := a.checkAuth(msg.err); out {
			return a, cmd
		}
		if msg.err != nil {
			a.feedPg.errMsg = msg.err.Error()
			return a, nil
		}
		a.feedPg.ApplyLike(msg.postID, msg.result.Liked)
		return a, nil

	case createCommentIntent:
		return a, a.createCommentCmd(msg.content)
	case deleteCommentIntent:
		return a, a.deleteCommentCmd(msg.commentID)
	case commentsLoadedMsg:
		a.comPg.SetState(a.commentCt.Comments(), a.commentCt.Loading(), a.commentCt.Err())
		return a, nil
	case commentMutatedMsg:
		if cmd, out := a.checkAuth(msg.err); out {
			return a, cmd
		}
		a.comPg.SetState(a.commentCt.Comments(), a.commentCt.Loading(), msg.err)
		return a, nil

	case inviteIntent:
		return a, a.inviteCmd(msg.email)
	case respondInvitationIntent:
		return a, a.respondCmd(msg.invitationID, msg.action)
	case removeMemberIntent:
		return a, a.removeMemberCmd(msg.memberID)
	case rosterLoadedMsg:
		if cmd, out := a.checkAuth(msg.err); out {
			return a, cmd
		}
		a.rosterP.SetState(a.circleCtl.Members(), a.circleCtl.Invitations(), msg.err)
		return a, nil
	case inviteDoneMsg:
		if cmd, out := a.checkAuth(msg.err); out {
			return a, cmd
		}
		if msg.err != nil {
			a.rosterP.SetError(msg.err)
			return a, nil
		}
		a.rosterP.SetNotice("Invitation sent.")
		return a, nil
	case invitationRespondedMsg, memberRemovedMsg:
		var err error
		if m, ok := msg.(invitationRespondedMsg); ok {
			err = m.err
		} else {
			err = msg.(memberRemovedMsg).err
		}
		if cmd, out := a.checkAuth(err); out {
			return a, cmd
		}
		if err != nil {
			a.rosterP.SetError(err)
			return a, nil
		}
		a.rosterP.SetState(a.circleCtl.Members(), a.circleCtl.Invitations(), nil)
		return a, a.loadFeedCmd()

	case loggedOutMsg:
		a.screen = screenLogin
		a.login = newLoginPage(a.styles)
		a.showComments = false
		return a, nil
	}
	return a, nil
}

func (a App) openComments(postID int64) (tea.Model, tea.Cmd) {
	var post, ok = a.feedPg.selected()
	if !ok || post.ID != postID {
		for _, p := range a.feedPg.posts {
			if p.ID == postID {
				post, ok = p, true
				break
			}
		}
	}
	if !ok {
		return a, nil
	}
	a.showComments = true
	a.comPg.Open(post)
	a.commentCt.SetPost(postID)
	a.commentCt.SetVisible(true)
	return a, func() tea.Msg {
		a.commentCt.Load(context.Background())
		return commentsLoadedMsg{}
	}
}

// checkAuth forces a logout when a call failed because the session is gone
// or rejected. Returns (cmd, true) when the error was consumed.
func (a *App) checkAuth(err error) (tea.Cmd, bool) {
	if err == nil {
		return nil, false
	}
	if errors.Is(err, api.ErrNoToken) || api.CodeOf(err) == api.CodeUnauthenticated {
		return a.logoutCmd(), true
	}
	return nil, false
}

type loggedOutMsg struct{}

func (a App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.sessions.ClearToken(context.Background()); err != nil {
			a.logger.Warn("clearing session failed", "error", err)
		}
		return loggedOutMsg{}
	}
}

func (a App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		pair, err := a.client.Login(ctx, email, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if err := a.sessions.SetToken(ctx, pair.AccessToken); err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{}
	}
}

func (a App) registerCmd(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := a.client.Register(ctx, name, email, password); err != nil {
			return registerDoneMsg{err: err}
		}
		pair, err := a.client.Login(ctx, email, password)
		if err != nil {
			return registerDoneMsg{err: err}
		}
		if err := a.sessions.SetToken(ctx, pair.AccessToken); err != nil {
			return registerDoneMsg{err: err}
		}
		return registerDoneMsg{}
	}
}

func (a App) loadFeedCmd() tea.Cmd {
	return func() tea.Msg {
		a.feedCtl.Load(context.Background())
		return feedLoadedMsg{}
	}
}

func (a App) setViewCmd(v feed.View) tea.Cmd {
	return func() tea.Msg {
		a.feedCtl.SetView(context.Background(), v)
		return feedLoadedMsg{}
	}
}

func (a App) createPostCmd(content string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.client.CreatePost(context.Background(), content, nil)
		if err != nil {
			return postCreatedMsg{err: err}
		}
		// The feed controller reloads through its bus subscription.
		a.bus.Publish(events.TopicPosts)
		return postCreatedMsg{}
	}
}

func (a App) deletePostCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return postDeletedMsg{err: a.feedCtl.Delete(context.Background(), id)}
	}
}

func (a App) toggleLikeCmd(postID int64) tea.Cmd {
	return func() tea.Msg {
		res, err := a.client.ToggleLike(context.Background(), postID)
		return likeToggledMsg{postID: postID, result: res, err: err}
	}
}

func (a App) createCommentCmd(content string) tea.Cmd {
	return func() tea.Msg {
		return commentMutatedMsg{err: a.commentCt.Create(context.Background(), content)}
	}
}

func (a App) deleteCommentCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return commentMutatedMsg{err: a.commentCt.Delete(context.Background(), id)}
	}
}

func (a App) loadRosterCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := a.circleCtl.LoadMembers(ctx); err != nil {
			return rosterLoadedMsg{err: err}
		}
		return rosterLoadedMsg{err: a.circleCtl.LoadInvitations(ctx)}
	}
}

func (a App) inviteCmd(email string) tea.Cmd {
	return func() tea.Msg {
		return inviteDoneMsg{err: a.circleCtl.Invite(context.Background(), email)}
	}
}

func (a App) respondCmd(id int64, action string) tea.Cmd {
	return func() tea.Msg {
		return invitationRespondedMsg{err: a.circleCtl.Respond(context.Background(), id, action)}
	}
}

func (a App) removeMemberCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		err := a.circleCtl.Remove(context.Background(), id)
		return memberRemovedMsg{err: err}
	}
}

func (a App) View() string {
	if a.screen == screenLogin {
		return "\n" + a.login.View() + "\n"
	}

	var sb strings.Builder
	sb.WriteString(a.styles.Header.Render(" CircleShare ") + "  ")
	for i, label := range tabLabels {
		style := a.styles.TabIdle
		if tab(i) == a.tab {
			style = a.styles.TabActive
		}
		sb.WriteString(style.Render(label))
		if i < len(tabLabels)-1 {
			sb.WriteString("   ")
		}
	}
	sb.WriteString("\n\n")

	if a.showComments {
		sb.WriteString(a.comPg.View())
		return sb.String()
	}

	help := a.feedPg.help()
	if a.tab == tabCircle {
		sb.WriteString(a.rosterP.View())
		help = a.rosterP.help()
	} else {
		sb.WriteString(a.feedPg.View())
	}

	sb.WriteString("\n\n" + a.styles.Help.Render(help+"  [1/2/3] tabs  [ctrl+l] logout  [q] quit"))
	return sb.String()
}
