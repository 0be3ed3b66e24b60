// Command seedcorpus populates a small sqlite "words" table for local
// development and manual protocol testing. The real corpus (§6's
// ~68178-row table) comes from an offline dictionary build pipeline
// that is out of scope for this repo; this tool is a dev-only stand-in
// that produces a table of the same shape at a much smaller scale.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vocabbie/internal/corpus"
)

// wordRow mirrors internal/corpus's unexported row mapping; it is
// redeclared here because this tool, unlike the server, needs to
// write the table rather than only read it.
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

func main() {
	dsn := flag.String("dsn", "corpus.sqlite3", "sqlite file to create/populate")
	perLevel := flag.Int("per-level", 50, "number of synthetic words per level")
	neighbors := flag.Int("neighbors", 6, "same-level neighbors to list in sim per word")
	flag.Parse()

	if err := run(*dsn, *perLevel, *neighbors); err != nil {
		fmt.Fprintf(os.Stderr, "seedcorpus: %v\n", err)
		os.Exit(1)
	}
}

func run(dsn string, perLevel, neighbors int) error {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&wordRow{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	var total uint32
	for lv := 0; lv < corpus.NumLevels; lv++ {
		rng := corpus.LVRanges[lv]
		if uint32(perLevel) > rng.Len() {
			return fmt.Errorf("level %d only has %d ids, cannot seed %d", lv, rng.Len(), perLevel)
		}
		levelIDs := make([]uint32, 0, perLevel)
		for i := 0; i < perLevel; i++ {
			levelIDs = append(levelIDs, rng.Start+uint32(i))
		}
		total += uint32(len(levelIDs))

		rows := make([]wordRow, 0, perLevel)
		for i, wid := range levelIDs {
			rows = append(rows, wordRow{
				ID:   wid,
				Word: fmt.Sprintf("lv%d_word%04d", lv, i),
				Freq: uint32(1_000_000 - int(wid)),
				Des:  fmt.Sprintf("translation_%d_a;;;translation_%d_b", wid, wid),
				Lv:   lv,
				Sim:  joinIDs(sampleNeighbors(levelIDs, i, neighbors)),
			})
		}
		if err := db.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("insert level %d: %w", lv, err)
		}
		log.Printf("[SeedCorpus] level %d: inserted %d words (ids %d-%d)", lv, len(rows), levelIDs[0], levelIDs[len(levelIDs)-1])
	}

	log.Printf("[SeedCorpus] done: %d words across %d levels written to %s", total, corpus.NumLevels, dsn)
	return nil
}

// sampleNeighbors returns up to n other ids from the same level,
// excluding the entry's own index.
func sampleNeighbors(levelIDs []uint32, self, n int) []uint32 {
	pool := make([]uint32, 0, len(levelIDs)-1)
	for j, id := range levelIDs {
		if j != self {
			pool = append(pool, id)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

func joinIDs(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
