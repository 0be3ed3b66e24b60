package corpus

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vocabbie/internal/config"
)

// ErrNotFound is returned by Entry when no row matches the given id.
var ErrNotFound = errors.New("corpus: entry not found")

// ErrExhausted is returned by RandomID when maxSampleIterations draws
// all landed in exclude (§7, "sampler exhaustion").
var ErrExhausted = errors.New("corpus: sampler exhausted")

// wordRow is the gorm mapping for the §6 "words" schema. The table is
// immutable at runtime; no migrations are performed against it here —
// it is produced by the out-of-scope offline dictionary build
// pipeline (see cmd/seedcorpus for a dev-only stand-in).
type wordRow struct {
	ID      uint32 `gorm:"column:id;primaryKey"`
	Word    string `gorm:"column:word"`
	Freq    uint32 `gorm:"column:freq"`
	Des     string `gorm:"column:des"`
	Lv      int    `gorm:"column:lv"`
	Sim     string `gorm:"column:sim"`
	Incl    string `gorm:"column:incl"`
	InclRev string `gorm:"column:incl_rev"`
}

func (wordRow) TableName() string { return "words" }

// maxSampleIterations bounds the rejection-sampling loops in §4.2/§4.3
// so a corrupted corpus (e.g. a level entirely present in history,
// which the session-length invariants should make impossible) fails
// the request instead of hanging it forever (§7, "sampler exhaustion").
const maxSampleIterations = 100000

// Store is read-only access to the corpus, as described in §2/§6.
type Store interface {
	// Entry returns the fully parsed row for id, including its
	// neighbor graph and translation list.
	Entry(ctx context.Context, id uint32) (Entry, error)
	// RandomID draws a uniform id from LVRanges[level] that is not a
	// key of exclude, retrying on collision.
	RandomID(ctx context.Context, level int, exclude map[uint32]struct{}) (uint32, error)
	Close() error
}

type gormStore struct {
	db    *gorm.DB
	cache *lru.Cache[uint32, Entry]
}

// Open connects to the configured corpus backend (sqlite by default,
// postgres when cfg.Driver == "postgres") and wraps it with an LRU
// cache of parsed rows, per §9's "parse once" design note.
func Open(cfg config.CorpusConfig) (Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("corpus: unknown driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("corpus: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)

	cache, err := lru.New[uint32, Entry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("corpus: lru cache: %w", err)
	}

	return &gormStore{db: db, cache: cache}, nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *gormStore) Entry(ctx context.Context, id uint32) (Entry, error) {
	if e, ok := s.cache.Get(id); ok {
		return e, nil
	}

	var row wordRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, fmt.Errorf("corpus: id %d: %w", id, ErrNotFound)
		}
		return Entry{}, fmt.Errorf("corpus: fetch id %d: %w", id, err)
	}
	entry, err := parseRow(row)
	if err != nil {
		return Entry{}, err
	}
	s.cache.Add(id, entry)
	return entry, nil
}

func parseRow(row wordRow) (Entry, error) {
	if row.Lv < 0 || row.Lv > 7 {
		return Entry{}, fmt.Errorf("corpus: id %d has out-of-range level %d", row.ID, row.Lv)
	}
	return Entry{
		ID:           row.ID,
		Word:         row.Word,
		Freq:         row.Freq,
		Translations: splitNonEmpty(row.Des, ";;;"),
		Level:        uint8(row.Lv),
		Sim:          parseIDList(row.Sim),
		Incl:         parseIDList(row.Incl),
		InclRev:      parseIDList(row.InclRev),
	}, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

func parseIDList(s string) []uint32 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		out = append(out, uint32(v))
	}
	return out
}

func (s *gormStore) RandomID(ctx context.Context, level int, exclude map[uint32]struct{}) (uint32, error) {
	if level < 0 || level >= NumLevels {
		return 0, fmt.Errorf("corpus: level %d out of range", level)
	}
	rng := LVRanges[level]
	for i := 0; i < maxSampleIterations; i++ {
		id := rng.Start + rand.Uint32N(rng.Len())
		if _, excluded := exclude[id]; !excluded {
			return id, nil
		}
	}
	return 0, fmt.Errorf("corpus: exhausted %d samples drawing from level %d: %w", maxSampleIterations, level, ErrExhausted)
}
