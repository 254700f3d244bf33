package storage

import (
	"fmt"
	"strconv"
)

// Well-known preference keys.
const (
	KeyEffectsVolume = "volume.effects"
	KeyMusicVolume   = "volume.music"
	KeyBestScore     = "score.best"
	KeyRoundsPlayed  = "score.rounds"
)

// DefaultVolume matches the game's out-of-the-box mixer level.
const DefaultVolume = 0.7

func encodeFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
func encodeInt(v int) string       { return strconv.Itoa(v) }

func decodeFloat(key, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("pref %s: %w", key, err)
	}
	return v, nil
}

func decodeInt(key, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("pref %s: %w", key, err)
	}
	return v, nil
}
