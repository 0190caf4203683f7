package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/circleshare/circleshare/internal/api"
	"github.com/circleshare/circleshare/internal/circletest"
	"github.com/circleshare/circleshare/internal/models"
	"github.com/circleshare/circleshare/internal/storage"
	"github.com/circleshare/circleshare/pkg/logging"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		ctx := cmd.Context()
		pair, err := env.client.Login(ctx, args[0], string(password))
		if err != nil {
			return err
		}
		if err := env.store.SetToken(ctx, pair.AccessToken); err != nil {
			return err
		}
		fmt.Println("Logged in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.ClearToken(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var flagPostPhoto string

var postCmd = &cobra.Command{
	Use:   "post <content>",
	Short: "Share a new post with your circle",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		content := strings.Join(args, " ")
		var photo *api.PhotoUpload
		if flagPostPhoto != "" {
			f, err := os.Open(flagPostPhoto)
			if err != nil {
				return err
			}
			defer f.Close()
			photo = &api.PhotoUpload{Filename: filepath.Base(flagPostPhoto), Reader: f}
		}

		post, err := env.client.CreatePost(cmd.Context(), content, photo)
		if err != nil {
			return err
		}
		fmt.Printf("Posted #%d.\n", post.ID)
		return nil
	},
}

var flagFeedMine bool

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the circle feed, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		var posts []models.Post
		if flagFeedMine {
			posts, err = env.client.MyPosts(cmd.Context())
		} else {
			posts, err = env.client.Timeline(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Println("No posts.")
			return nil
		}
		for _, p := range posts {
			heart := "♡"
			if p.ViewerLiked {
				heart = "♥"
			}
			fmt.Printf("#%d  %s  %s\n", p.ID, p.AuthorName, p.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Printf("    %s\n", p.Content)
			if p.PhotoURL != "" {
				fmt.Printf("    [photo] %s\n", p.PhotoURL)
			}
			fmt.Printf("    %s %d\n", heart, p.LikeCount)
		}
		return nil
	},
}

var circleCmd = &cobra.Command{
	Use:   "circle",
	Short: "Show and manage your circle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		members, err := env.client.Members(ctx)
		if err != nil {
			return err
		}
		invitations, err := env.client.Invitations(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Members (%d):\n", len(members))
		for _, m := range members {
			fmt.Printf("  #%d  %s <%s>\n", m.ID, m.Name, m.Email)
		}
		fmt.Printf("Pending invitations (%d):\n", len(invitations))
		for _, inv := range invitations {
			fmt.Printf("  #%d  from %s <%s>\n", inv.ID, inv.FromName, inv.FromEmail)
		}
		return nil
	},
}

var circleInviteCmd = &cobra.Command{
	Use:   "invite <email>",
	Short: "Invite someone to your circle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.client.Invite(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Invitation sent.")
		return nil
	},
}

var circleRespondCmd = &cobra.Command{
	Use:   "respond <invitation-id> <accept|decline>",
	Short: "Accept or decline a received invitation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invitation id %q", args[0])
		}
		action := args[1]
		if action != models.InvitationAccept && action != models.InvitationDecline {
			return fmt.Errorf("action must be %q or %q", models.InvitationAccept, models.InvitationDecline)
		}
		if err := env.client.RespondInvitation(cmd.Context(), id, action); err != nil {
			return err
		}
		fmt.Printf("Invitation %sed.\n", strings.TrimSuffix(action, "e"))
		return nil
	},
}

var circleRemoveCmd = &cobra.Command{
	Use:   "remove <member-id>",
	Short: "Remove a member from your circle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid member id %q", args[0])
		}
		if err := env.client.RemoveMember(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Member removed.")
		return nil
	},
}

var flagDemoAddr string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a local in-memory backend with sample data",
	Long: `Start an in-memory CircleShare backend with two seeded accounts,
Ada (a@example.com / secret1) and Grace (g@example.com / secret2),
already in each other's circle with a few posts. Point the client at it:

  circleshare demo &
  circleshare login a@example.com
  circleshare

The server also exposes Prometheus metrics under /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup()

		srv := circletest.New("demo-secret")
		if err := seedDemo(cmd.Context(), srv); err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.Handle("/", srv.Handler())

		slog.Info("demo backend listening", "addr", flagDemoAddr)
		return http.ListenAndServe(flagDemoAddr, mux)
	},
}

// seedDemo registers the sample accounts and drives a short session through
// the real HTTP surface so the feed is not empty on first login.
func seedDemo(ctx context.Context, srv *circletest.Server) error {
	if _, err := srv.SeedUser("Ada", "a@example.com", "secret1"); err != nil {
		return err
	}
	if _, err := srv.SeedUser("Grace", "g@example.com", "secret2"); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	defer ln.Close()
	go http.Serve(ln, srv.Handler())

	session := seedSession{
		store:  storage.NewMemoryStore(),
		client: nil,
	}
	session.client = api.New("http://"+ln.Addr().String(), session.store)

	if err := session.as(ctx, "a@example.com", "secret1"); err != nil {
		return err
	}
	if err := session.client.Invite(ctx, "g@example.com"); err != nil {
		return err
	}
	adaPost, err := session.client.CreatePost(ctx, "Planted the first tomatoes of the season.", nil)
	if err != nil {
		return err
	}

	if err := session.as(ctx, "g@example.com", "secret2"); err != nil {
		return err
	}
	invitations, err := session.client.Invitations(ctx)
	if err != nil {
		return err
	}
	for _, inv := range invitations {
		if err := session.client.RespondInvitation(ctx, inv.ID, models.InvitationAccept); err != nil {
			return err
		}
	}
	if _, err := session.client.CreatePost(ctx, "Finished the 10k this morning, legs are done.", nil); err != nil {
		return err
	}
	if _, err := session.client.CreateComment(ctx, adaPost.ID, "Save some tomatoes for me!"); err != nil {
		return err
	}
	if _, err := session.client.ToggleLike(ctx, adaPost.ID); err != nil {
		return err
	}
	return nil
}

// seedSession is a throwaway client identity used only while preparing the
// demo data.
type seedSession struct {
	store  *storage.MemoryStore
	client *api.Client
}

// as switches the session to the given account.
func (s *seedSession) as(ctx context.Context, email, password string) error {
	pair, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.store.SetToken(ctx, pair.AccessToken)
}

func init() {
	postCmd.Flags().StringVar(&flagPostPhoto, "photo", "", "path of a photo to attach")
	feedCmd.Flags().BoolVar(&flagFeedMine, "mine", false, "show your own posts instead of the circle feed")
	demoCmd.Flags().StringVar(&flagDemoAddr, "addr", "127.0.0.1:8000", "listen address")

	circleCmd.AddCommand(circleInviteCmd, circleRespondCmd, circleRemoveCmd)
}
