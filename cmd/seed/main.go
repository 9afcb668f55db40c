package main

import (
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/hackerforce/platform/internal/boot"
	"github.com/hackerforce/platform/internal/model"
	"github.com/hackerforce/platform/internal/store"
)

// Course ids are stable slugs so rerunning the seeder is a no-op.
func courses() []model.Course {
	now := time.Now().UTC()
	return []model.Course{
		{
			ID:          "cybersecurity-essentials",
			CreatedAt:   now,
			Title:       "Cybersecurity Essentials",
			Description: "An introductory course on cybersecurity basics.",
			Level:       model.CourseLevelI,
			Section:     model.SectionGeneral,
			Modules: []model.Module{
				{ID: "mod1", Title: "Introduction to Cybersecurity", Content: "What is cybersecurity? Why is it important?"},
				{ID: "mod2", Title: "Types of Threats", Content: "Overview of common security threats."},
			},
			Challenges: []model.Challenge{
				{ID: "ch1", Title: "Basic Quiz", Description: "Test your fundamental knowledge.", XPReward: 50, KeyReward: 1},
			},
			TotalXP:        100,
			TotalKeys:      1,
			EstimatedHours: 2,
			IsActive:       true,
		},
		{
			ID:          "red-team-fundamentals",
			CreatedAt:   now,
			Title:       "Red Team Fundamentals",
			Description: "Learn how to think like an attacker and test defenses.",
			Level:       model.CourseLevelII,
			Section:     model.SectionRedTeaming,
			Modules: []model.Module{
				{ID: "mod1", Title: "Penetration Testing Basics", Content: "Understanding the basics of penetration testing."},
			},
			Challenges: []model.Challenge{
				{ID: "ch1", Title: "Simulated Attack", Description: "Apply red team concepts in a safe environment.", XPReward: 200, KeyReward: 2},
			},
			TotalXP:        200,
			TotalKeys:      2,
			EstimatedHours: 4,
			IsActive:       true,
		},
		{
			ID:          "blue-team-defense",
			CreatedAt:   now,
			Title:       "Blue Team Defense",
			Description: "Defend and monitor systems from attacks.",
			Level:       model.CourseLevelIII,
			Section:     model.SectionBlueTeam,
			Modules: []model.Module{
				{ID: "mod1", Title: "Defensive Monitoring", Content: "Detecting intrusions through logs and alerts."},
			},
			Challenges: []model.Challenge{
				{ID: "ch1", Title: "Incident Response Drill", Description: "Contain and report a simulated breach.", XPReward: 300, KeyReward: 3},
			},
			TotalXP:        300,
			TotalKeys:      3,
			EstimatedHours: 6,
			IsActive:       true,
		},
	}
}

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	db, err := store.Open(config)
	if err != nil {
		log.Fatalf("opening store: %+v", err)
	}
	defer db.Close()

	for _, c := range courses() {
		if err := db.CreateCourse(&c); err != nil {
			if errors.Is(err, model.ErrorConflict) {
				log.Infof("course %q already seeded", c.Title)
				continue
			}
			log.Fatalf("seeding course %q: %+v", c.Title, err)
		}
		log.Infof("seeded course %q", c.Title)
	}
}
