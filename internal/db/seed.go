// internal/db/seed.go
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// sampleCourts is the demo catalog loaded on first start. Prices are whole
// rupiah per hour; all courts share the default 08:00-22:00 window.
var sampleCourts = []CreateCourtParams{
	{
		Name:        "Aneka Futsal - Indoor Premium",
		Category:    "Indoor",
		HourlyPrice: 120000,
		Facilities:  "Toilet,Kantin,WiFi,Loker",
		ImageURL:    "https://i.imgur.com/HjXhLWJ.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
	{
		Name:        "Meteor Arena - Outdoor",
		Category:    "Outdoor",
		HourlyPrice: 80000,
		Facilities:  "Toilet,Kantin,Parkir Luas",
		ImageURL:    "https://i.imgur.com/N2mf03j.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
	{
		Name:        "Semar Futsal Center",
		Category:    "Indoor",
		HourlyPrice: 100000,
		Facilities:  "Kantin,Wifi,Toilet,Parkir",
		ImageURL:    "https://i.imgur.com/FP1qPGa.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
	{
		Name:        "Paragon Arena",
		Category:    "Indoor",
		HourlyPrice: 110000,
		Facilities:  "Toilet,Kantin,WiFi,Parkir",
		ImageURL:    "https://i.imgur.com/O28vCzW.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
	{
		Name:        "Dragon Futsal - Outdoor",
		Category:    "Outdoor",
		HourlyPrice: 85000,
		Facilities:  "Kantin,Toilet,Parkir",
		ImageURL:    "https://i.imgur.com/ZZt0CUa.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
	{
		Name:        "Milwal Sports Center - Premium",
		Category:    "Premium",
		HourlyPrice: 150000,
		Facilities:  "AC,Toilet,Kantin,WiFi,Loker,Shower",
		ImageURL:    "https://i.imgur.com/QQl6WVM.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
	{
		Name:        "Sintesis Arena",
		Category:    "Indoor",
		HourlyPrice: 95000,
		Facilities:  "Toilet,Kantin,Wifi,Parkir Luas",
		ImageURL:    "https://i.imgur.com/3jlvTn1.jpeg",
		OpenHour:    8,
		CloseHour:   22,
	},
}

// SeedCourtsIfEmpty inserts the sample court catalog on first start. It is a
// no-op when any court row already exists, so repeated starts are idempotent.
// The count runs inside the insert transaction and court names are unique, so
// concurrently starting processes cannot double-seed: the loser either sees
// the winner's rows or fails on the name constraint and backs off.
func (db *DB) SeedCourtsIfEmpty(ctx context.Context) error {
	seeded := false
	err := db.RunInTx(ctx, func(txdb *DB) error {
		count, err := txdb.Queries.CountCourts(ctx)
		if err != nil {
			return fmt.Errorf("count courts: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, court := range sampleCourts {
			if _, err := txdb.Queries.CreateCourt(ctx, court); err != nil {
				return fmt.Errorf("seed court %q: %w", court.Name, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		if IsUniqueConstraint(err) {
			log.Info().Msg("Sample courts already seeded by another process")
			return nil
		}
		return err
	}

	if seeded {
		log.Info().Int("courts", len(sampleCourts)).Msg("Seeded sample courts")
	}
	return nil
}
