package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/config"
	"github.com/dmitrijs2005/gophbucket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophbucket/internal/client/services"
	"github.com/dmitrijs2005/gophbucket/internal/client/storewatch"
	"github.com/dmitrijs2005/gophbucket/internal/client/tokens"
	"github.com/dmitrijs2005/gophbucket/internal/common"
	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

const redisKeyPrefix = "gophbucket:"

// credentialStore is the token store plus the maintenance operations the
// CLI offers on top of it.
type credentialStore interface {
	services.TokenStore
	UnlockedBuckets(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
}

var _ credentialStore = (*tokens.Store)(nil)

type App struct {
	config *config.Config
	log    logging.Logger

	sessions  services.SessionManager
	buckets   services.BucketAuthGate
	uploads   services.UploadOrchestrator
	retrieval services.RetrievalGate
	navigator services.Navigator
	store     credentialStore
	writes    *storewatch.LocalWrites
	gatherer  prometheus.Gatherer

	reader  *bufio.Reader
	out     io.Writer
	closers []func() error
}

// NewApp opens the configured token store, connects the API client and
// wires the session, bucket, upload and retrieval services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repo, closeRepo, err := openRepository(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening token store", "backend", c.StoreBackend, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, log)
	if err != nil {
		_ = closeRepo()
		return nil, err
	}

	writes := &storewatch.LocalWrites{}
	if c.StoreBackend == config.BackendSQLite {
		repo = writes.Track(repo)
	}

	a := newApp(c, api, tokens.NewStore(repo), services.BrowserNavigator, services.DirSaver{Dir: c.DownloadDir}, log)
	a.writes = writes
	a.closers = append(a.closers, closeRepo)
	return a, nil
}

func newApp(c *config.Config, api client.Client, store credentialStore, nav services.Navigator, saver services.Saver, log logging.Logger) *App {
	signIn := c.SignInURL
	if signIn == "" {
		signIn = api.OAuthURL(common.DefaultOAuthProvider)
	}

	sessions := services.NewSessionManager(api, store, nav, signIn, log)
	a := &App{
		config:    c,
		log:       log,
		sessions:  sessions,
		buckets:   services.NewBucketAuthGate(api, store, sessions, log),
		uploads:   services.NewUploadOrchestrator(api, store, sessions, log),
		retrieval: services.NewRetrievalGate(api, store, sessions, nav, saver, log),
		navigator: nav,
		store:     store,
		gatherer:  prometheus.DefaultGatherer,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	sessions.Subscribe(a.onSessionEvent)
	return a
}

func openRepository(ctx context.Context, c *config.Config) (metadata.Repository, func() error, error) {
	switch c.StoreBackend {
	case config.BackendMemory:
		return metadata.NewMemoryRepository(), func() error { return nil }, nil

	case config.BackendRedis:
		rc, err := metadata.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return metadata.NewRedisRepository(rc, redisKeyPrefix), rc.Close, nil

	default:
		db, err := client.InitDatabase(ctx, c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return metadata.NewSQLiteRepository(db), db.Close, nil
	}
}

func (a *App) onSessionEvent(ev services.Event) {
	switch ev.Kind {
	case services.EventExpired:
		printlnFn("Your session has expired. Use 'login' to sign in again.")
	case services.EventExternal:
		if ev.Authenticated {
			printlnFn("Session updated by another client.")
		} else {
			printlnFn("Signed out by another client.")
		}
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.sessions.IsAuthenticated(ctx)
}

func (a *App) getStatus() string {
	if a.isLoggedIn(context.Background()) {
		return "(signed in) "
	}
	return ""
}

// Run starts the store watcher, when enabled, and blocks in the REPL until
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if a.config.WatchStore && a.config.StoreBackend == config.BackendSQLite {
		w := storewatch.New(a.config.StorePath, a.writes, a.log)
		go func() {
			if err := w.Run(ctx, func() { a.sessions.HandleExternalChange(ctx) }); err != nil {
				a.log.Warn(ctx, "store watcher stopped", "error", err)
			}
		}()
	}

	printlnFn("Welcome to GophBucket CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(&lineReader{r: a.reader}))
}

// Close releases the token store.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn(context.Background(), "close", "error", err)
		}
	}
	a.closers = nil
}

// lineReader hands the REPL scanner one line per Read, leaving the rest in
// the shared reader for prompts issued by commands.
type lineReader struct {
	r       *bufio.Reader
	pending []byte
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		line, err := l.r.ReadBytes('\n')
		if len(line) == 0 {
			return 0, err
		}
		l.pending = line
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}
