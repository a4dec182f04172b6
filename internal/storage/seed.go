package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnsureDefaults seeds a default portfolio and gallery placeholders when the
// store is empty, so a fresh deployment serves something meaningful.
func EnsureDefaults(s Store, now time.Time) error {
	if _, err := s.FirstPortfolio(); errors.Is(err, ErrNotFound) {
		if err := s.SavePortfolio(defaultPortfolio(now)); err != nil {
			return fmt.Errorf("seeding default portfolio: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking for existing portfolio: %w", err)
	}

	photos, err := s.ListPhotos(false)
	if err != nil {
		return fmt.Errorf("checking gallery: %w", err)
	}
	if len(photos) == 0 {
		for i, ph := range placeholderPhotos() {
			ph.ID = uuid.New().String()
			ph.Order = i
			ph.Visible = true
			ph.CreatedAt = Timestamp(now)
			if err := s.SavePhoto(ph); err != nil {
				return fmt.Errorf("seeding gallery photo: %w", err)
			}
		}
	}
	return nil
}

func defaultPortfolio(now time.Time) Portfolio {
	return Portfolio{
		ID:    uuid.New().String(),
		Name:  "Miryam Abida",
		Title: "Creative Developer & Designer",
		Bio: "I'm a passionate developer who loves creating beautiful, functional digital experiences. " +
			"With expertise in web development, UI/UX design, and creative problem-solving, " +
			"I bring ideas to life with code and creativity.",
		HeroImage: "https://images.unsplash.com/photo-1579546929518-9e396f3cc809?w=1920",
		Skills: []Skill{
			{Name: "React", Level: 90, Category: "Frontend"},
			{Name: "Python", Level: 85, Category: "Backend"},
			{Name: "UI/UX Design", Level: 88, Category: "Design"},
			{Name: "TypeScript", Level: 82, Category: "Frontend"},
			{Name: "Node.js", Level: 80, Category: "Backend"},
			{Name: "Figma", Level: 85, Category: "Design"},
		},
		Experience: []Experience{
			{
				ID:          uuid.New().String(),
				Title:       "Senior Frontend Developer",
				Company:     "Tech Innovators Inc.",
				Period:      "2022 - Present",
				Description: "Leading frontend development for enterprise applications.",
			},
			{
				ID:          uuid.New().String(),
				Title:       "UI/UX Designer",
				Company:     "Creative Studio",
				Period:      "2020 - 2022",
				Description: "Designed user interfaces for mobile and web applications.",
			},
		},
		Projects: []Project{
			{
				ID:          uuid.New().String(),
				Title:       "E-Commerce Platform",
				Description: "A modern shopping experience with AI recommendations.",
				Image:       "https://images.unsplash.com/photo-1556742049-0cfed4f6a45d?w=600",
				Tags:        []string{"React", "Node.js", "MongoDB"},
				Link:        "#",
			},
			{
				ID:          uuid.New().String(),
				Title:       "Portfolio Dashboard",
				Description: "Analytics dashboard for creative professionals.",
				Image:       "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=600",
				Tags:        []string{"Vue.js", "Python", "D3.js"},
				Link:        "#",
			},
			{
				ID:          uuid.New().String(),
				Title:       "Social Media App",
				Description: "Community platform for artists and designers.",
				Image:       "https://images.unsplash.com/photo-1611162617474-5b21e879e113?w=600",
				Tags:        []string{"React Native", "Firebase"},
				Link:        "#",
			},
		},
		Contact: map[string]string{
			"email":    "miryam@example.com",
			"phone":    "+1 234 567 890",
			"location": "San Francisco, CA",
			"linkedin": "https://linkedin.com/in/miryam",
			"github":   "https://github.com/miryam",
			"twitter":  "https://twitter.com/miryam",
		},
		SectionsOrder: []string{"hero", "about", "skills", "experience", "projects", "contact"},
		SectionsVisible: map[string]bool{
			"hero": true, "about": true, "skills": true,
			"experience": true, "projects": true, "contact": true,
		},
		Theme:       "light",
		AccentColor: "#6A00FF",
		FontFamily:  "Inter",
		UpdatedAt:   Timestamp(now),
	}
}

func placeholderPhotos() []GalleryPhoto {
	return []GalleryPhoto{
		{URL: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=600", Caption: "Portrait in Nature"},
		{URL: "https://images.unsplash.com/photo-1524504388940-b1c1722653e1?w=600", Caption: "Creative Workspace"},
		{URL: "https://images.unsplash.com/photo-1517841905240-472988babdf9?w=600", Caption: "Urban Vibes"},
		{URL: "https://images.unsplash.com/photo-1488426862026-3ee34a7d66df?w=600", Caption: "Coffee & Coding"},
		{URL: "https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=600", Caption: "Sunset Thoughts"},
		{URL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=600", Caption: "Tech Conference"},
	}
}
