// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitwise74/image-board/db"
	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/internal/storage"
	"bitwise74/image-board/internal/store"
	"bitwise74/image-board/pkg/middleware"
	"bitwise74/image-board/pkg/security"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"

	sessionCookieName = "session"
	uploadsURLPrefix  = "/uploads"
)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Auth   *service.AuthService
	Images *service.ImageService
	Cookie middleware.SessionCookie

	MaxUploadSize     int64
	AllowedExtensions []string
}

// Options is everything New needs to assemble the router
type Options struct {
	DB      *gorm.DB
	Auth    *service.AuthService
	Images  *service.ImageService
	Storage storage.Storage

	CORSOrigins       []string
	SecureCookies     bool
	MaxUploadSize     int64
	AllowedExtensions []string
}

// NewRouter builds the whole application from the loaded config
func NewRouter() (*API, error) {
	makeLogger(viper.GetString("app.log_level"))

	if viper.GetBool("session.secret_generated") {
		zap.L().Warn("session.secret is not set, using a random one. Sessions will not survive a restart")
	}

	gdb, err := db.New(db.Options{
		Driver: viper.GetString("db.driver"),
		Path:   viper.GetString("db.path"),
		DSN:    viper.GetString("db.dsn"),
		Debug:  viper.GetString("app.log_level") == "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := makeSessionStore(ctx, gdb)
	if err != nil {
		return nil, err
	}

	st, err := makeStorage(ctx)
	if err != nil {
		return nil, err
	}

	maxAge := time.Duration(viper.GetInt("session.max_age")) * time.Second
	auth := service.NewAuthService(
		store.NewUsers(gdb),
		sessions,
		security.New(),
		security.NewSessionSigner(viper.GetString("session.secret")),
		maxAge,
	)

	exts := viper.GetStringSlice("upload.allowed_extensions")
	maxSize := viper.GetInt64("upload.max_size")

	images := service.NewImageService(store.NewImages(gdb), st, service.ImageOptions{
		MaxSize:           maxSize,
		AllowedExtensions: exts,
		ThumbnailSize:     viper.GetInt("upload.thumbnail_size"),
	})

	return New(Options{
		DB:                gdb,
		Auth:              auth,
		Images:            images,
		Storage:           st,
		CORSOrigins:       corsOrigins(viper.GetStringSlice("host.cors")),
		SecureCookies:     viper.GetBool("host.ssl.enabled"),
		MaxUploadSize:     maxSize,
		AllowedExtensions: exts,
	})
}

// New wires middleware and routes around already built services
func New(o Options) (*API, error) {
	a := &API{
		DB:     o.DB,
		Auth:   o.Auth,
		Images: o.Images,
		Cookie: middleware.SessionCookie{
			Name:   sessionCookieName,
			Secure: o.SecureCookies,
		},
		MaxUploadSize:     o.MaxUploadSize,
		AllowedExtensions: o.AllowedExtensions,
	}

	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"http://localhost:8080"}
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     o.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD" || strings.HasPrefix(c.Request.URL.Path, uploadsURLPrefix+"/")
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString(middleware.RequestIDKey); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString(middleware.UserIDKey); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = o.MaxUploadSize

	if err := a.loadTemplates(); err != nil {
		return nil, err
	}

	if l, ok := o.Storage.(*storage.Local); ok {
		// GET /uploads/:name		-> Serves stored images and thumbnails
		router.Static(uploadsURLPrefix, l.Dir)
	}

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", a.Heartbeat)

	app := router.Group("", middleware.NewSessionMiddleware(a.Auth, a.Cookie))
	{
		// GET /			-> Landing page
		app.GET("/", a.Home)

		// GET|POST /register		-> Registers a new user
		app.GET("/register", a.UserRegisterPage)
		app.POST("/register", middleware.BodySizeLimiter(1<<20, a.formTooLarge), a.UserRegister)

		// GET|POST /login		-> Logs in a user and sets the session cookie
		app.GET("/login", a.UserLoginPage)
		app.POST("/login", middleware.BodySizeLimiter(1<<20, a.formTooLarge), a.UserLogin)

		// GET /logout			-> Ends the current session
		app.GET("/logout", a.UserLogout)
	}

	images := app.Group("")
	{
		// GET|POST /upload_form	-> Uploads a new image
		// The limit leaves room for the rest of the form, the service checks the file itself
		images.GET("/upload_form", a.ImageUploadPage)
		images.POST("/upload_form", middleware.BodySizeLimiter(2*o.MaxUploadSize, a.UploadTooLarge), a.ImageUpload)

		// GET /upload_done/:id		-> Shows a single image
		images.GET("/upload_done/:id", a.ImageView)

		// GET|POST /edit/:id		-> Edits the metadata of an owned image
		images.GET("/edit/:id", a.ImageEditPage)
		images.POST("/edit/:id", middleware.BodySizeLimiter(1<<20, a.formTooLarge), a.ImageEdit)

		// GET /delete/:id		-> Soft deletes an owned image
		images.GET("/delete/:id", a.ImageDelete)

		// GET /my_uploads		-> Lists the images of the logged in user
		images.GET("/my_uploads", a.ImageListMine)

		// GET /explore			-> Lists public images, filterable by tag
		images.GET("/explore", a.ImageExplore)
	}

	return a, nil
}

func (a *API) formTooLarge(c *gin.Context) {
	a.flashRedirect(c, flashDanger, "Request body too large", c.Request.URL.Path)
}

func makeSessionStore(ctx context.Context, gdb *gorm.DB) (store.SessionStore, error) {
	if viper.GetString("session.store") == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}

		zap.L().Debug("Using redis session store", zap.String("addr", viper.GetString("redis.addr")))
		return store.NewRedisSessions(rdb), nil
	}

	sessions := store.NewSessions(gdb)

	// Expired rows are otherwise only removed when someone presents them
	n, err := sessions.DeleteExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to purge expired sessions, %w", err)
	}

	if n > 0 {
		zap.L().Info("Purged expired sessions", zap.Int64("count", n))
	}

	return sessions, nil
}

func makeStorage(ctx context.Context) (storage.Storage, error) {
	if viper.GetString("storage.type") == "s3" {
		s, err := storage.NewS3(ctx, storage.S3Options{
			Bucket:          viper.GetString("storage.s3.bucket"),
			Region:          viper.GetString("storage.s3.region"),
			AccessKeyID:     viper.GetString("storage.s3.access_key_id"),
			SecretAccessKey: viper.GetString("storage.s3.secret_access_key"),
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			PublicURL:       viper.GetString("storage.s3.public_url"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		return s, nil
	}

	s, err := storage.NewLocal(viper.GetString("storage.local.path"), uploadsURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage, %w", err)
	}

	return s, nil
}

// corsOrigins accepts both a TOML array and a comma separated env value
func corsOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, o := range strings.Split(r, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}

	return out
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
