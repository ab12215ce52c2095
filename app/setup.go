package app

import (
	"bitwise74/conference-api/aws"
	"bitwise74/conference-api/cloudflare"
	"bitwise74/conference-api/config"
	"bitwise74/conference-api/db"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/membership"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/security"
	"context"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// How long the auth middleware trusts a cached role
const principalTTL = 30 * time.Second

type App struct {
	Engine *gin.Engine
	Deps   *internal.Deps

	closers []func(ctx context.Context) error
}

// NewRouter wires every dependency from the loaded config and returns the
// ready to serve application
func NewRouter(ctx context.Context) (*App, error) {
	makeLogger()

	a := &App{}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	storage, err := newStorage(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize storage, %w", err)
	}

	var mailer service.Mailer = service.LogMailer{}
	if viper.GetBool("mail.enabled") {
		mailer = service.NewSMTPMailer(
			viper.GetString("mail.host"),
			viper.GetInt("mail.port"),
			viper.GetString("mail.username"),
			viper.GetString("mail.password"),
			viper.GetString("mail.sender"),
		)
	}

	principals := ttlcache.NewCache()
	principals.SetTTL(principalTTL)
	principals.SkipTTLExtensionOnHit(true)
	a.closers = append(a.closers, func(context.Context) error { return principals.Close() })

	d := &internal.Deps{
		DB:      conn,
		Argon:   security.New(),
		Storage: storage,
		Outbox: service.NewOutbox(conn, mailer, service.OutboxOpts{
			Workers:     viper.GetInt("outbox.workers"),
			MaxAttempts: viper.GetInt("outbox.max_attempts"),
		}),
		Fees: membership.FeeSchedule{
			Default:  viper.GetFloat64("payment.default_fee"),
			ByType:   config.Fees(),
			Currency: viper.GetString("payment.currency"),
		},
		Principals: principals,
		Settings: internal.Settings{
			JWTSecret: []byte(viper.GetString("jwt.secret")),
			JWTTTL:    time.Duration(viper.GetInt("jwt.ttl_hours")) * time.Hour,
			Links: service.Links{
				Domain: viper.GetString("host.domain"),
				SSL:    viper.GetBool("host.ssl.enabled"),
			},
			MaxUploadSize: viper.GetInt64("upload.max_size"),
			DeadlineDays:  viper.GetInt("review.deadline_days"),
			Categories:    viper.GetStringSlice("conference.categories"),
		},
	}

	if uri := viper.GetString("membership.uri"); uri != "" {
		dir, err := membership.NewMongoDirectory(ctx, membership.MongoOpts{
			URI:        uri,
			Database:   viper.GetString("membership.database"),
			Collection: viper.GetString("membership.collection"),
		})
		if err != nil {
			a.Close(ctx)
			return nil, err
		}

		d.Members = dir
		a.closers = append(a.closers, dir.Close)
	} else {
		zap.L().Warn("No membership.uri set, membership lookups are disabled")
	}

	var store persist.CacheStore = persist.NewMemoryStore(time.Minute)
	if addr := viper.GetString("cache.redis_addr"); addr != "" {
		var rdb *redis.Client
		rdb, store = newRedisStore(addr, viper.GetString("cache.redis_password"))

		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			a.Close(ctx)
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}

		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	}

	a.Deps = d
	a.Engine = NewEngine(d, EngineOpts{
		Context:     ctx,
		CORSOrigins: viper.GetStringSlice("host.cors_origins"),
		RateLimit:   viper.GetInt("security.rate_limit"),
		CacheStore:  store,
		Turnstile: middleware.TurnstileOpts{
			Enabled: viper.GetBool("cloudflare.turnstile.enabled"),
			Secret:  viper.GetString("cloudflare.turnstile.secret_token"),
		},
	})

	return a, nil
}

func newStorage(ctx context.Context) (service.Storage, error) {
	switch viper.GetString("storage.type") {
	case "s3":
		s3, err := aws.NewS3(ctx, aws.S3Opts{
			Region:          viper.GetString("aws.region"),
			AccessKey:       viper.GetString("aws.access_key"),
			SecretAccessKey: viper.GetString("aws.secret_access_key"),
			Bucket:          viper.GetString("aws.bucket"),
			Endpoint:        viper.GetString("aws.endpoint"),
			PublicURL:       viper.GetString("aws.public_url"),
		})
		if err != nil {
			return nil, err
		}

		return s3, nil
	case "r2":
		r2, err := cloudflare.NewR2(ctx, cloudflare.R2Opts{
			AccountID:       viper.GetString("cloudflare.account_id"),
			AccessKeyID:     viper.GetString("cloudflare.access_key_id"),
			SecretAccessKey: viper.GetString("cloudflare.secret_access_key"),
			Bucket:          viper.GetString("cloudflare.bucket"),
			PublicURL:       viper.GetString("cloudflare.public_url"),
		})
		if err != nil {
			return nil, err
		}

		return r2, nil
	default:
		scheme := "http"
		if viper.GetBool("host.ssl.enabled") {
			scheme = "https"
		}

		return service.NewMemoryStorage(fmt.Sprintf("%s://%s/files", scheme, viper.GetString("host.domain"))), nil
	}
}

// newRedisStore returns a response cache backed by redis. The client does not
// connect until first use.
func newRedisStore(addr, password string) (*redis.Client, persist.CacheStore) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	return rdb, persist.NewRedisStore(rdb)
}

// Close releases every connection opened by NewRouter
func (a *App) Close(ctx context.Context) error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i](ctx))
	}

	a.closers = nil
	return err
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
