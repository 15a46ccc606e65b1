package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shotcraft/internal/cli"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shotcraft",
		Short:         "ShotCraft creative assistant client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAuthCmd())
	root.AddCommand(newProjectsCmd())
	root.AddCommand(newSessionsCmd())
	root.AddCommand(newShotsCmd())
	root.AddCommand(newFusionCmd())
	return root
}

func withApp(run func(app *cli.App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := cli.NewApp()
		if err != nil {
			return err
		}
		defer app.Close()
		return run(app, cmd, args)
	}
}

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Manage authentication"}

	var username, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.LoginCommand(cmd.Context(), app, username, password)
		}),
	}
	login.Flags().StringVarP(&username, "username", "u", "", "account username")
	login.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")

	var regUsername, regPassword, regConfirm string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.RegisterCommand(cmd.Context(), app, regUsername, regPassword, regConfirm)
		}),
	}
	register.Flags().StringVarP(&regUsername, "username", "u", "", "account username")
	register.Flags().StringVarP(&regPassword, "password", "p", "", "account password (prompted when omitted)")
	register.Flags().StringVar(&regConfirm, "confirm-password", "", "password confirmation (prompted when omitted)")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored access token",
		RunE: withApp(func(app *cli.App, _ *cobra.Command, _ []string) error {
			return cli.LogoutCommand(app)
		}),
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current authentication state",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.WhoamiCommand(cmd.Context(), app)
		}),
	}

	auth.AddCommand(login, register, logout, whoami)
	return auth
}

func newProjectsCmd() *cobra.Command {
	projects := &cobra.Command{Use: "projects", Short: "Manage projects"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.ProjectsListCommand(cmd.Context(), app)
		}),
	}

	var name, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.ProjectsCreateCommand(cmd.Context(), app, name, description)
		}),
	}
	create.Flags().StringVar(&name, "name", "", "project name")
	create.Flags().StringVar(&description, "description", "", "project description")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, args []string) error {
			return cli.ProjectsDeleteCommand(cmd.Context(), app, args[0], yes)
		}),
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	projects.AddCommand(list, create, del)
	return projects
}

func newSessionsCmd() *cobra.Command {
	sessions := &cobra.Command{Use: "sessions", Short: "Manage saved sessions"}

	var projectID, kind string
	var offline bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.SessionsListCommand(cmd.Context(), app, projectID, kind, offline)
		}),
	}
	list.Flags().StringVar(&projectID, "project", "", "project id (account-wide when omitted)")
	list.Flags().StringVar(&kind, "type", "all", "session type filter: all, fusion, or shots")
	list.Flags().BoolVar(&offline, "offline", false, "read the local cache instead of the backend")

	show := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session's saved data",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, args []string) error {
			return cli.SessionsShowCommand(cmd.Context(), app, args[0])
		}),
	}

	var delProject string
	var yes bool
	del := &cobra.Command{
		Use:   "delete <session-name>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, args []string) error {
			return cli.SessionsDeleteCommand(cmd.Context(), app, delProject, args[0], yes)
		}),
	}
	del.Flags().StringVar(&delProject, "project", "", "project id (account-wide when omitted)")
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	rename := &cobra.Command{
		Use:   "rename <session-name> <new-name>",
		Short: "Rename a saved session",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, args []string) error {
			return cli.SessionsRenameCommand(cmd.Context(), app, args[0], args[1])
		}),
	}

	var watchProject, watchKind string
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session list refreshed",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.SessionsWatchCommand(cmd.Context(), app, watchProject, watchKind)
		}),
	}
	watch.Flags().StringVar(&watchProject, "project", "", "project id (account-wide when omitted)")
	watch.Flags().StringVar(&watchKind, "type", "all", "session type filter: all, fusion, or shots")

	sessions.AddCommand(list, show, del, rename, watch)
	return sessions
}

func newShotsCmd() *cobra.Command {
	shots := &cobra.Command{Use: "shots", Short: "Shot suggestions and images"}

	var scene, model string
	var numShots int
	var generateImages bool
	suggest := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest shots for a scene",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.ShotsSuggestCommand(cmd.Context(), app, scene, numShots, model, generateImages)
		}),
	}
	suggest.Flags().StringVar(&scene, "scene", "", "scene description")
	suggest.Flags().IntVar(&numShots, "num", 5, "number of shots to suggest")
	suggest.Flags().StringVar(&model, "model", "", "model name (config default when omitted)")
	suggest.Flags().BoolVar(&generateImages, "generate-images", false, "generate an image for every suggested shot")

	var description, genModel, sessionID string
	var shotIndex int
	generate := &cobra.Command{
		Use:   "generate-image",
		Short: "Generate an image for one shot description",
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, _ []string) error {
			return cli.ShotsGenerateImageCommand(cmd.Context(), app, description, genModel, sessionID, shotIndex)
		}),
	}
	generate.Flags().StringVar(&description, "description", "", "shot description")
	generate.Flags().StringVar(&genModel, "model", "", "model name (config default when omitted)")
	generate.Flags().StringVar(&sessionID, "session", "", "saved session to update in place")
	generate.Flags().IntVar(&shotIndex, "index", 0, "shot index within the session")

	shots.AddCommand(suggest, generate)
	return shots
}

func newFusionCmd() *cobra.Command {
	fusion := &cobra.Command{Use: "fusion", Short: "Image fusion workflow"}

	analyze := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Analyze reference images",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, args []string) error {
			return cli.FusionAnalyzeCommand(cmd.Context(), app, args)
		}),
	}

	var prompt, projectID, outPath string
	run := &cobra.Command{
		Use:   "run <image>...",
		Short: "Analyze, combine and generate a fused image",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(app *cli.App, cmd *cobra.Command, args []string) error {
			return cli.FusionRunCommand(cmd.Context(), app, args, prompt, projectID, outPath)
		}),
	}
	run.Flags().StringVar(&prompt, "prompt", "", "fusion prompt")
	run.Flags().StringVar(&projectID, "project", "", "project to save the result under")
	run.Flags().StringVarP(&outPath, "out", "o", "", "output file for base64 image payloads")

	fusion.AddCommand(analyze, run)
	return fusion
}
