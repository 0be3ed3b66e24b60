package corpus

import (
	"context"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T, rows []wordRow) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&wordRow{}))
	if len(rows) > 0 {
		require.NoError(t, db.Create(&rows).Error)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cache, err := lru.New[uint32, Entry](64)
	require.NoError(t, err)
	return &gormStore{db: db, cache: cache}
}

func TestEntry_ParsesDesSimInclColumns(t *testing.T) {
	store := newTestStore(t, []wordRow{
		{ID: 1, Word: "hello", Freq: 900, Des: "你好;;;嗨", Lv: 0, Sim: "2,3", Incl: "4", InclRev: ""},
		{ID: 2, Word: "hi", Freq: 800, Des: "嗨", Lv: 0},
	})

	entry, err := store.Entry(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", entry.Word)
	assert.Equal(t, []string{"你好", "嗨"}, entry.Translations)
	assert.Equal(t, []uint32{2, 3}, entry.Sim)
	assert.Equal(t, []uint32{4}, entry.Incl)
	assert.Nil(t, entry.InclRev)
	assert.Equal(t, []uint32{2, 3, 4}, entry.Neighbors())
}

func TestEntry_UnknownIDReturnsErrNotFound(t *testing.T) {
	store := newTestStore(t, nil)
	_, err := store.Entry(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntry_OutOfRangeLevelIsRejected(t *testing.T) {
	store := newTestStore(t, []wordRow{{ID: 1, Word: "x", Lv: 9}})
	_, err := store.Entry(context.Background(), 1)
	assert.Error(t, err)
}

func TestEntry_IsCachedAfterFirstLookup(t *testing.T) {
	store := newTestStore(t, []wordRow{{ID: 1, Word: "hello", Lv: 0}}).(*gormStore)

	_, err := store.Entry(context.Background(), 1)
	require.NoError(t, err)

	_, cached := store.cache.Get(1)
	assert.True(t, cached)
}

func TestRandomID_ExcludesGivenSet(t *testing.T) {
	rows := make([]wordRow, 0, LVRanges[0].Len())
	for id := LVRanges[0].Start; id < LVRanges[0].End; id++ {
		rows = append(rows, wordRow{ID: id, Word: "w", Lv: 0})
	}
	store := newTestStore(t, rows)

	exclude := make(map[uint32]struct{})
	for id := LVRanges[0].Start; id < LVRanges[0].End-1; id++ {
		exclude[id] = struct{}{}
	}

	id, err := store.RandomID(context.Background(), 0, exclude)
	require.NoError(t, err)
	assert.Equal(t, LVRanges[0].End-1, id)
}

func TestRandomID_InvalidLevelErrors(t *testing.T) {
	store := newTestStore(t, nil)
	_, err := store.RandomID(context.Background(), NumLevels, nil)
	assert.Error(t, err)
}

func TestSplitNonEmpty_EmptyStringIsNil(t *testing.T) {
	assert.Nil(t, splitNonEmpty("", ";;;"))
	assert.Equal(t, []string{"a", "b"}, splitNonEmpty("a;;;b", ";;;"))
}

func TestParseIDList_SkipsMalformedEntries(t *testing.T) {
	assert.Nil(t, parseIDList(""))
	assert.Equal(t, []uint32{1, 2}, parseIDList("1, 2"))
	assert.Equal(t, []uint32{1}, parseIDList("1,nope"))
}
