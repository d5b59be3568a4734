package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultLocalTypes returns the built-in local categories.
func DefaultLocalTypes() []LocalType {
	return []LocalType{
		{
			Icon:             "🎉",
			Name:             "Event & Occassions",
			Description:      "Make every occasion memorable! From cozy gatherings to grand celebrations, find venues, ideas, and local services that make planning a breeze. Get inspired by neighborhood vibes and trending experiences to create unforgettable moments!",
			ShortDescription: "Plan unforgettable gatherings with perfect venues, services, and ideas. Make every event simple, stylish, and stress-free",
		},
		{
			Icon:             "✨",
			Name:             "New to City",
			Description:      "Welcome to your new city. Let's make it feel like home! Find the best places to stay, shop, and explore while getting to know your neighborhood. From daily essentials to exciting experiences, we'll guide you every step of the way to unlock the heart of the city!",
			ShortDescription: "Settle into your new city with ease and excitement. From local shops to must-visit places, we'll help you to unlock the heart of the city!",
		},
		{
			Icon:             "🌍",
			Name:             "Tourist",
			Description:      "Discover the city like never before! From iconic landmarks to hidden gems, you'll find everything that makes your trip unforgettable. Get inspired by local flavors, culture, and must-visit spots. Whether it's your first visit or your tenth, every day can feel like a new adventure!",
			ShortDescription: "Explore the city's best spots, hidden gems, and local flavors. Every day is a new adventure waiting for you—start exploring now!",
		},
		{
			Icon:             "🏠",
			Name:             "Local",
			Description:      "Fall in love with your own city all over again! Explore neighborhood favorites, try out new hangouts, and uncover experiences right around the corner. From weekend plans to secret gems, there's always something fresh to enjoy. Your city is buzzing—let's make the most of it!",
			ShortDescription: "Rediscover your city with fresh hangouts, secret gems, and weekend vibes. Fall in love with your hometown again—dive in today!",
		},
	}
}

// SeedLocalTypes inserts the default categories when the table is empty.
// Re-running against a seeded database is a no-op.
func (s *SQLiteStore) SeedLocalTypes(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM local_types").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting local types: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	inserted := 0
	for _, lt := range DefaultLocalTypes() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO local_types (uuid, name, description, short_description, icon, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), lt.Name, lt.Description, lt.ShortDescription, lt.Icon, now)
		if err != nil {
			return inserted, fmt.Errorf("seeding local type %q: %w", lt.Name, err)
		}
		inserted++
	}
	return inserted, nil
}
