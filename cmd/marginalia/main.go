package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
	"github.com/MarcoPoloResearchLab/marginalia/internal/config"
	"github.com/MarcoPoloResearchLab/marginalia/internal/discussion"
	"github.com/MarcoPoloResearchLab/marginalia/internal/document"
	"github.com/MarcoPoloResearchLab/marginalia/internal/editor"
	"github.com/MarcoPoloResearchLab/marginalia/internal/logging"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
	"github.com/MarcoPoloResearchLab/marginalia/internal/scene"
	"github.com/MarcoPoloResearchLab/marginalia/internal/view"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "marginalia",
		Short: "Headless document annotation editor",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	openCmd := &cobra.Command{
		Use:   "open [query]",
		Short: "Open a document (random without a query) and list its annotations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runOpen(cmd.Context(), query, cmd.OutOrStdout())
		},
	}

	heatmapCmd := &cobra.Command{
		Use:   "heatmap [query]",
		Short: "Render a document's annotation density heatmap to a PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runHeatmap(cmd.Context(), query, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(openCmd, heatmapCmd)
	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("backend-url", defaults.GetString("backend.url"), "Annotation backend base URL")
	cmd.PersistentFlags().String("session-cookie", defaults.GetString("session.cookie"), "Backend session cookie value")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("heatmap-path", defaults.GetString("heatmap.path"), "Output path for the heatmap PNG")

	bindFlag(cmd, "backend.url", "backend-url")
	bindFlag(cmd, "session.cookie", "session-cookie")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "heatmap.path", "heatmap-path")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

type workspace struct {
	logger   *zap.Logger
	backend  *client.Client
	session  *editor.Session
	switcher *document.Switcher
	set      *overlay.Set
}

func newWorkspace() (*workspace, error) {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	backend, err := client.New(client.Config{
		BaseURL:       appConfig.BackendURL,
		SessionCookie: appConfig.SessionCookie,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	set := overlay.NewSet()
	camera := view.NewCamera()
	session, err := editor.NewSession(editor.Config{
		Set:           set,
		Camera:        camera,
		Graph:         scene.NewMemoryGraph(),
		IDProvider:    overlay.NewUUIDProvider(),
		Logger:        logger,
		Authenticated: appConfig.SessionCookie != "",
	})
	if err != nil {
		return nil, err
	}
	switcher, err := document.NewSwitcher(document.SwitcherConfig{
		Backend: backend,
		Camera:  camera,
		Set:     set,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &workspace{
		logger:   logger,
		backend:  backend,
		session:  session,
		switcher: switcher,
		set:      set,
	}, nil
}

func (w *workspace) open(ctx context.Context, query string) (document.Layout, error) {
	if query == "" {
		return w.switcher.OpenRandom(ctx)
	}
	return w.switcher.Open(ctx, query)
}

func runOpen(ctx context.Context, query string, out io.Writer) error {
	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	layout, err := ws.open(ctx, query)
	if err != nil {
		return err
	}
	ws.session.ApplyDocument(layout)

	fmt.Fprintf(out, "%s (%d pages, %d annotations)\n", ws.switcher.Current(), len(layout.Pages), ws.set.Len())
	mine, others := discussion.PartitionNotes(ws.set.All(), discussion.SortTop)
	printNotes(out, "yours", mine)
	printNotes(out, "others", others)
	return nil
}

func printNotes(out io.Writer, heading string, notes []*overlay.Annotation) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", heading)
	for _, note := range notes {
		fmt.Fprintf(out, "  (%.0f,%.0f) %s  [+%d/-%d] %s\n",
			note.Anchor.X, note.Anchor.Y, note.Author, note.Upvotes, note.Downvotes, note.Note)
	}
}

func runHeatmap(ctx context.Context, query string, out io.Writer) error {
	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.logger.Sync() //nolint:errcheck

	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	layout, err := ws.open(ctx, query)
	if err != nil {
		return err
	}
	ws.session.ApplyDocument(layout)

	dst := image.NewRGBA(image.Rect(0, 0, int(view.LogicalWidth), int(view.LogicalHeight)))
	camera := view.NewCamera()
	camera.SetContent(layout.MaxWidth, layout.TotalHeight, layout.FirstPageWidth)
	camera.FitToView(true)
	ws.session.Heatmap().Composite(dst, camera.Pan, camera.Zoom)

	file, err := os.Create(appConfig.HeatmapPath)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := png.Encode(file, dst); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d annotations)\n", appConfig.HeatmapPath, ws.set.Len())
	return nil
}
