package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/api"
	"github.com/noah-isme/smart-attendance-cli/internal/capture"
	"github.com/noah-isme/smart-attendance-cli/internal/models"
	"github.com/noah-isme/smart-attendance-cli/internal/service"
	"github.com/noah-isme/smart-attendance-cli/internal/session"
	"github.com/noah-isme/smart-attendance-cli/internal/store"
	"github.com/noah-isme/smart-attendance-cli/pkg/config"
	"github.com/noah-isme/smart-attendance-cli/pkg/logger"
	"github.com/noah-isme/smart-attendance-cli/pkg/metrics"
	"github.com/noah-isme/smart-attendance-cli/pkg/storage"
)

const usage = `smart attendance client

usage: attendance-cli <command> [flags]

commands:
  login     -email -password      sign in and persist the access token
  logout                          sign out and clear the stored token
  whoami                          show details of the current token
  courses                         list courses
  sessions  [-course]             list attendance sessions
  records   -session              list records and status counts for a session
  capture   -course -session -image   capture a snapshot and mark attendance
  export    -session [-format] [-out] export a session summary (csv or pdf)
`

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *api.Client
	session  *session.Context
	courses  *service.CourseService
	sessions *service.SessionService
	records  *service.RecordService
	marker   *service.AttendanceService
	exporter *service.ExportService
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	recorder := metrics.NewRecorder()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg, recorder, logr)
	}

	credStore, err := buildCredentialStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open credential store", "error", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, recorder, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build dispatcher", "error", err)
	}

	sessCtx := session.New(credStore, client, client, validator.New(), logr)
	client.OnUnauthorized(sessCtx.HandleUnauthorized)

	// Nothing renders until initialization resolves; this is what keeps the
	// frontend from flashing the wrong screen.
	sessCtx.Initialize(context.Background())

	records := service.NewRecordService(client, client.Origin(), logr)
	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export directory", "error", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logr,
		client:   client,
		session:  sessCtx,
		courses:  service.NewCourseService(client, logr),
		sessions: service.NewSessionService(client, logr),
		records:  records,
		marker:   service.NewAttendanceService(client, logr),
		exporter: service.NewExportService(records, exportStore, logr),
	}

	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) run(command string, args []string) error {
	ctx := context.Background()

	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.session.SignOut(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "courses":
		return a.authenticated(func() error { return a.cmdCourses(ctx) })
	case "sessions":
		return a.authenticated(func() error { return a.cmdSessions(ctx, args) })
	case "records":
		return a.authenticated(func() error { return a.cmdRecords(ctx, args) })
	case "capture":
		return a.authenticated(func() error { return a.cmdCapture(ctx, args) })
	case "export":
		return a.authenticated(func() error { return a.cmdExport(ctx, args) })
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) authenticated(fn func() error) error {
	if a.session.State() != session.StateAuthenticated {
		return fmt.Errorf("you are signed out; run 'attendance-cli login' first")
	}
	return fn()
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if err := a.session.SignIn(ctx, *email, *password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Println("Signed in.")
	return nil
}

func (a *app) cmdWhoami() error {
	if a.session.State() != session.StateAuthenticated {
		fmt.Println("Signed out.")
		return nil
	}
	fmt.Println("Signed in.")
	if details := models.InspectToken(a.session.Token()); details != nil {
		if details.Subject != "" {
			fmt.Printf("  subject:    %s\n", details.Subject)
		}
		if details.IssuedAt != nil {
			fmt.Printf("  issued at:  %s\n", details.IssuedAt.Format("2006-01-02 15:04:05"))
		}
		if details.ExpiresAt != nil {
			fmt.Printf("  expires at: %s\n", details.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func (a *app) cmdCourses(ctx context.Context) error {
	courses, err := a.courses.List(ctx)
	if err != nil {
		return fmt.Errorf("unable to load courses: %w", err)
	}
	if len(courses) == 0 {
		fmt.Println("No courses.")
		return nil
	}
	for _, c := range courses {
		line := fmt.Sprintf("%d  %s  %s", c.ID, c.Code, c.Title)
		if c.Program != nil && c.Section != nil {
			line += fmt.Sprintf("  (%s / %s)", *c.Program, *c.Section)
		}
		fmt.Println(line)
	}
	return nil
}

func (a *app) cmdSessions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "filter by course id")
	_ = fs.Parse(args)

	var filter *int64
	if *courseID > 0 {
		filter = courseID
	}

	sessions, err := a.sessions.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("unable to load sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}
	for _, s := range sessions {
		notes := ""
		if s.Notes != nil {
			notes = *s.Notes
		}
		fmt.Printf("%d  course %d  %s  %s\n", s.ID, s.CourseID, s.SessionDate, notes)
	}
	return nil
}

func (a *app) cmdRecords(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("records", flag.ExitOnError)
	sessionID := fs.Int64("session", 0, "session id")
	_ = fs.Parse(args)

	var id *int64
	if *sessionID > 0 {
		id = sessionID
	}

	fetched, err := a.records.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load records: %w", err)
	}
	a.printRecords(fetched, *sessionID)
	return nil
}

func (a *app) printRecords(records []models.AttendanceRecord, sessionID int64) {
	if len(records) == 0 {
		fmt.Printf("No attendance records for session %d.\n", sessionID)
		return
	}
	for _, r := range records {
		student := "Unidentified"
		if r.StudentID != nil {
			student = fmt.Sprintf("Student %d", *r.StudentID)
		}
		line := fmt.Sprintf("%d  %s  %s", r.ID, student, r.DisplayStatus())
		if r.Confidence != nil {
			line += fmt.Sprintf("  confidence %.4f", *r.Confidence)
		}
		if r.SnapshotURL != nil {
			line += "  " + a.records.ResolveSnapshotURL(*r.SnapshotURL)
		}
		fmt.Println(line)
	}
	summary := a.records.Summary()
	fmt.Printf("present %d, absent %d, late %d, unknown %d\n",
		summary.Present, summary.Absent, summary.Late, summary.Unknown)
}

func (a *app) cmdCapture(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "course id")
	sessionID := fs.Int64("session", 0, "session id")
	image := fs.String("image", "", "path to the snapshot image")
	_ = fs.Parse(args)

	var course, sess *int64
	if *courseID > 0 {
		course = courseID
	}
	if *sessionID > 0 {
		sess = sessionID
	}

	provider := &capture.FileProvider{Path: *image}
	workflow := capture.NewWorkflow(provider, a.marker, a.records, a.logger)

	attempt, err := workflow.Run(ctx, course, sess)
	if err != nil {
		return err
	}

	switch attempt.Phase {
	case capture.PhaseAborted:
		// Cancellation stays silent; only reasoned aborts surface.
		if attempt.Reason != "" {
			return fmt.Errorf("capture aborted: %s", attempt.Reason)
		}
		return nil
	case capture.PhaseFailed:
		return fmt.Errorf("upload failed: could not upload the snapshot, please try again")
	case capture.PhaseSettled:
		fmt.Println("Snapshot uploaded.")
		if attempt.RefreshErr != nil {
			fmt.Println("Unable to load records; showing the previous list.")
		}
		a.printRecords(a.records.Records(), *sessionID)
		return nil
	default:
		return fmt.Errorf("capture ended in unexpected phase %q", attempt.Phase)
	}
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	sessionID := fs.Int64("session", 0, "session id")
	format := fs.String("format", "csv", "export format: csv or pdf")
	out := fs.String("out", "", "output file name")
	_ = fs.Parse(args)

	if *sessionID <= 0 {
		return fmt.Errorf("a session id is required")
	}

	path, err := a.exporter.Export(ctx, *sessionID, service.ExportFormat(*format), *out)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func buildCredentialStore(cfg *config.Config) (store.CredentialStore, error) {
	switch cfg.Credentials.Backend {
	case config.StoreBackendRedis:
		return store.NewRedisStore(cfg.Redis, cfg.Credentials.Key)
	default:
		return store.NewFileStore(cfg.Credentials.File, cfg.Credentials.Secret)
	}
}

func serveMetrics(cfg *config.Config, recorder *metrics.Recorder, logr *zap.Logger) {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(recorder.Handler()))

	logr.Sugar().Infow("metrics listener starting", "addr", cfg.Metrics.Addr)
	if err := r.Run(cfg.Metrics.Addr); err != nil {
		logr.Sugar().Warnw("metrics listener stopped", "error", err)
	}
}
