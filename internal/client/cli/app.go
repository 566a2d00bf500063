package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/stillmind/stillmind/internal/client/client"
	"github.com/stillmind/stillmind/internal/client/config"
	"github.com/stillmind/stillmind/internal/client/repositories/analytics"
	"github.com/stillmind/stillmind/internal/client/repositories/content"
	"github.com/stillmind/stillmind/internal/client/repositories/metadata"
	"github.com/stillmind/stillmind/internal/client/repositories/records"
	"github.com/stillmind/stillmind/internal/client/services"
	"github.com/stillmind/stillmind/internal/logging"
	"github.com/stillmind/stillmind/internal/netx"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// App ties the client services to the interactive REPL. Mode reflects the
// last observed connectivity state; the sync layer keeps it current through
// a connectivity subscription.
type App struct {
	config         *config.Config
	authService    services.AuthService
	syncService    *services.SyncService
	contentService *services.ContentService
	ownerId        string
	Mode           Mode
	reader         *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr)
	logger := logging.NewJSONLogger()

	recordsRepo := records.NewSQLiteRepository(db)
	metadataRepo := metadata.NewSQLiteRepository(db)
	contentRepo := content.NewSQLiteRepository(db)
	analyticsRepo := analytics.NewSQLiteRepository(db)

	ss := services.NewSyncService(apiClient, recordsRepo, metadataRepo, contentRepo, analyticsRepo, logger)
	ss.SetSyncDelay(c.SyncDelay)
	as := services.NewAuthService(apiClient, metadataRepo, logger)
	cs := services.NewContentService(apiClient, contentRepo, logger, netx.DownloadFromPresignedURL)

	app := &App{
		config:         c,
		authService:    as,
		syncService:    ss,
		contentService: cs,
		reader:         bufio.NewReader(os.Stdin),
	}

	ss.SubscribeConnectivity(func(online bool) {
		if online {
			app.setMode(ModeOnline)
		} else if app.Mode == ModeOnline {
			app.setMode(ModeOffline)
		}
	})

	return app, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.ownerId != ""
}

func (a *App) getStatus() string {
	s := ""
	if a.ownerId != "" {
		s = a.ownerId + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	return s
}

// Run starts the connectivity watcher and the REPL, blocking until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	go a.syncService.StartOnlineWatcher(ctx, a.config.OnlineCheckInterval)

	log.Println("Welcome to stillmind CLI (type 'help' for commands)")
	_ = a.Login(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
