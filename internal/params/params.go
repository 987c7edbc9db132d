// Package params derives the text-generation knobs for a given day.
//
// The same calendar date always yields the same parameters, so a rerun on
// the same day asks the model the same question with the same seed.
package params

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"
)

// ISODate is the layout used for dates in file names and seeds.
const ISODate = "2006-01-02"

// seedModulus keeps the seed inside a positive 31-bit range.
const seedModulus = 1<<31 - 1

// Parameters controls sampling for one text-generation request.
type Parameters struct {
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
	Seed             uint32
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Derive maps a calendar date to generation parameters. Only the year, month
// and day of date are used.
func Derive(date time.Time) Parameters {
	day := date.YearDay()
	return Parameters{
		Temperature:      round2(0.70 + float64(day%25)*0.01),
		PresencePenalty:  round2(0.50 + float64(day%30)*0.01),
		FrequencyPenalty: round2(0.30 + float64(day%40)*0.01),
		Seed:             Seed(date),
	}
}

// Seed hashes the ISO form of date and reduces the first 32 bits of the digest
// modulo 2^31-1.
func Seed(date time.Time) uint32 {
	sum := sha256.Sum256([]byte(date.Format(ISODate)))
	return binary.BigEndian.Uint32(sum[:4]) % seedModulus
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
