package internal

import (
	"bitwise74/conference-api/internal/membership"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/security"
	"time"

	"github.com/jellydator/ttlcache/v2"
	"gorm.io/gorm"
)

// Settings are the runtime knobs handlers need. They are resolved from the
// config once at startup.
type Settings struct {
	JWTSecret     []byte
	JWTTTL        time.Duration
	Links         service.Links
	MaxUploadSize int64
	// Default review window in days
	DeadlineDays int
	Categories   []string
}

type Deps struct {
	DB         *gorm.DB
	Argon      *security.ArgonHash
	Storage    service.Storage
	Outbox     *service.Outbox
	Members    membership.Directory
	Fees       membership.FeeSchedule
	Principals *ttlcache.Cache
	Settings   Settings
}
