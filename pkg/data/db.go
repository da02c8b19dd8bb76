package data

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/settings"
)

// DefaultProfile is the row a single-user deployment reads and writes.
const DefaultProfile = "default"

// Profile is one stored dial configuration.
type Profile struct {
	gorm.Model
	Name      string `gorm:"uniqueIndex"`
	Latitude  float64
	Longitude float64
	TimeZone  string
	Offset    float64
	DarkMode  bool
	// Gradient is stored as #rrggbb.
	Gradient   string
	FontFamily string
}

func (p Profile) Settings() (settings.Settings, error) {
	s := settings.Defaults()
	s.Location = almanac.Location{Latitude: p.Latitude, Longitude: p.Longitude}
	if p.TimeZone != "" {
		s.TimeZone = p.TimeZone
	}
	s.Offset = p.Offset
	s.DarkMode = p.DarkMode
	s.FontFamily = p.FontFamily
	if p.Gradient != "" {
		c, err := settings.ParseHex(p.Gradient)
		if err != nil {
			return settings.Defaults(), fmt.Errorf("profile %q: %w", p.Name, err)
		}
		s.GradientColor = c
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return settings.Defaults(), fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return s, nil
}

func (p *Profile) update(s settings.Settings) {
	p.Latitude = s.Latitude
	p.Longitude = s.Longitude
	p.TimeZone = s.TimeZone
	p.Offset = s.Offset
	p.DarkMode = s.DarkMode
	p.Gradient = s.GradientColor.Hex()
	p.FontFamily = s.FontFamily
}

// Store is a settings.Store backed by a SQL database.
type Store struct {
	db      *gorm.DB
	profile string
}

var _ settings.Store = (*Store)(nil)

// NewStore migrates db and stores settings under the named profile.
func NewStore(db *gorm.DB, profile string) (*Store, error) {
	if err := db.AutoMigrate(&Profile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &Store{db: db, profile: profile}, nil
}

func (s *Store) Load(ctx context.Context) (settings.Settings, error) {
	var p Profile
	r := s.db.WithContext(ctx).Where("name = ?", s.profile).First(&p)
	if errors.Is(r.Error, gorm.ErrRecordNotFound) {
		return settings.Defaults(), nil
	} else if r.Error != nil {
		return settings.Defaults(), fmt.Errorf("failed to load profile %q: %w", s.profile, r.Error)
	}
	return p.Settings()
}

func (s *Store) Save(ctx context.Context, next settings.Settings) error {
	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}

	// Read-modify-write so the row keeps its ID.
	db := s.db.WithContext(ctx)
	var p Profile
	if r := db.Where("name = ?", s.profile).First(&p); r.Error != nil && !errors.Is(r.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load profile %q: %w", s.profile, r.Error)
	}
	p.Name = s.profile
	p.update(next)
	if tx := db.Save(&p); tx.Error != nil {
		return fmt.Errorf("failed to save profile %q: %w", s.profile, tx.Error)
	}
	return nil
}

// DSNFromEnv builds a postgres DSN from the libpq environment variables.
func DSNFromEnv() string {
	dbname := os.Getenv("PGDATABASE")
	if dbname == "" {
		dbname = "celesun"
	}
	user := os.Getenv("PGUSER")
	if user == "" {
		user = "postgres"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("PGHOST"),
		user,
		os.Getenv("PGPASSWORD"),
		dbname,
		os.Getenv("PGPORT"))
}

// OpenPostgres connects to dsn and returns a Store for profile.
func OpenPostgres(dsn, profile string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewStore(db, profile)
}
