package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/lock"
	"github.com/prn-tf/projecthub/internal/service"
)

const (
	seedLockTTL  = 2 * time.Minute
	seedLockWait = time.Minute

	// salesPerProject sample sales are recorded for each seeded project.
	salesPerProject = 2
)

// SeedOptions names the two accounts created by Seed.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
	UserUsername  string
	UserPassword  string
}

// SeedReport summarizes what a Seed run wrote.
type SeedReport struct {
	AdminCreated bool
	UserCreated  bool
	Projects     int
	Settings     int
	Sales        int
}

// SampleProject is a catalog entry written by Seed.
type SampleProject struct {
	Title           string
	Description     string
	LongDescription string
	ImageURL        string
	Price           float64
	Category        string
	Technologies    string
	Featured        bool

	// AdminOwned projects belong to the admin account, the rest to the seller.
	AdminOwned bool
}

// SampleProjects is the demo catalog.
var SampleProjects = []SampleProject{
	{
		Title:           "E-Commerce Platform",
		Description:     "A complete e-commerce solution with payment integration, inventory management, and analytics dashboard.",
		LongDescription: "Full e-commerce platform with Next.js, Stripe, and PostgreSQL.",
		ImageURL:        "https://images.unsplash.com/photo-1556742049-0cfed4f6a45d?w=800",
		Price:           299,
		Category:        "E-Commerce",
		Technologies:    "Next.js, TypeScript, Prisma, Stripe",
		Featured:        true,
		AdminOwned:      true,
	},
	{
		Title:           "AI Chat Application",
		Description:     "Real-time chat application with AI-powered responses and conversation history.",
		LongDescription: "Intelligent conversational experiences with GPT integration.",
		ImageURL:        "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800",
		Price:           349,
		Category:        "AI/ML",
		Technologies:    "Next.js, Socket.io, OpenAI, MongoDB",
		AdminOwned:      true,
	},
	{
		Title:           "SaaS Dashboard Template",
		Description:     "Modern admin dashboard with charts, tables, user management, and dark mode support.",
		LongDescription: "Beautifully designed SaaS dashboard template ready for your next project.",
		ImageURL:        "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=800",
		Price:           199,
		Category:        "Dashboard",
		Technologies:    "React, TypeScript, Tailwind CSS",
		Featured:        true,
	},
	{
		Title:           "Portfolio Website",
		Description:     "Portfolio template with animations, project showcase, and contact form.",
		LongDescription: "Showcase your work with this portfolio template.",
		ImageURL:        "https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?w=800",
		Price:           79,
		Category:        "Portfolio",
		Technologies:    "Next.js, Framer Motion, CSS",
	},
	{
		Title:           "Task Management System",
		Description:     "Kanban-style project management tool with team collaboration features.",
		LongDescription: "Kanban boards, due dates, labels, attachments and email notifications for small teams.",
		ImageURL:        "https://images.unsplash.com/photo-1611224923853-80b023f02d71?w=800",
		Price:           249,
		Category:        "Productivity",
		Technologies:    "React, Node.js, PostgreSQL",
		Featured:        true,
	},
	{
		Title:           "Fitness Tracker App",
		Description:     "Mobile-first fitness application with workout plans, progress tracking, and nutrition logging.",
		LongDescription: "Workout library, progress charts, goal setting and PWA support.",
		ImageURL:        "https://images.unsplash.com/photo-1476480862126-209bfaa8edc8?w=800",
		Price:           399,
		Category:        "Health & Fitness",
		Technologies:    "React Native, Firebase, Node.js",
	},
}

// Seed writes the default settings, the admin and seller accounts, and the
// demo catalog with sample sales. It is safe to run repeatedly: existing
// accounts are kept and the catalog is only written into an empty store.
func Seed(ctx context.Context, s *Services, locker lock.Locker, opts SeedOptions) (*SeedReport, error) {
	report := &SeedReport{}
	err := lock.WithLock(ctx, locker, lock.Keys.Seed(), seedLockTTL, seedLockWait, func(ctx context.Context) error {
		return seed(ctx, s, opts, report)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return report, nil
}

func seed(ctx context.Context, s *Services, opts SeedOptions, report *SeedReport) error {
	if err := s.Settings.Apply(ctx, domain.DefaultSettings); err != nil {
		return err
	}
	report.Settings = len(domain.DefaultSettings)

	admin, created, err := ensureAccount(ctx, s.Accounts, opts.AdminUsername, opts.AdminPassword, domain.RoleAdmin)
	if err != nil {
		return err
	}
	report.AdminCreated = created

	seller, created, err := ensureAccount(ctx, s.Accounts, opts.UserUsername, opts.UserPassword, domain.RoleUser)
	if err != nil {
		return err
	}
	report.UserCreated = created

	existing, err := s.Projects.ListPublic(ctx, "", false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, sample := range SampleProjects {
		owner := seller
		if sample.AdminOwned {
			owner = admin
		}

		p := domain.NewProject(owner.ID)
		p.Title = sample.Title
		p.Description = sample.Description
		p.LongDescription = sample.LongDescription
		p.ImageURL = sample.ImageURL
		p.Price = sample.Price
		p.Category = sample.Category
		p.Technologies = sample.Technologies
		p.Featured = sample.Featured

		if err := s.Projects.Seed(ctx, p); err != nil {
			return fmt.Errorf("project %q: %w", sample.Title, err)
		}
		report.Projects++

		for range salesPerProject {
			if _, err := s.Stats.RecordSale(ctx, p.ID, owner.ID, p.Price); err != nil {
				return err
			}
			report.Sales++
		}
	}
	return nil
}

// ensureAccount provisions username unless it already exists, and returns
// the stored account either way.
func ensureAccount(ctx context.Context, accounts *service.AccountService, username, password string, role domain.Role) (*domain.Account, bool, error) {
	account, err := accounts.Provision(ctx, service.CreateAccountInput{
		Username: username,
		Password: password,
		Role:     role,
	})
	if err == nil {
		return account, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		return nil, false, fmt.Errorf("account %q: %w", username, err)
	}

	all, err := accounts.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, a := range all {
		if a.Username == username {
			return a, false, nil
		}
	}
	return nil, false, fmt.Errorf("account %q reported as taken but not found", username)
}
