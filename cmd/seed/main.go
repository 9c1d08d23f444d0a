// Command seed fills a database with sample users, projects and tasks and
// prints a bearer token for each seeded user.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/service"
	"github.com/headless-pm/progress-tracker/pkg/auth"
	"github.com/headless-pm/progress-tracker/pkg/config"
	"gorm.io/gorm/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to optional JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDatabase(cfg.Database.DataDir, logger.Silent)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	svc := service.New(db, service.Options{ClaimAttempts: cfg.Claims.RetryAttempts})
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.TokenTTL())

	users := []service.CreateUserInput{
		{Name: "Admin", Email: "admin@example.com", Role: models.UserRoleAdmin},
		{Name: "Morgan Manager", Email: "morgan@example.com", Role: models.UserRoleManager},
		{Name: "Erin Employee", Email: "erin@example.com", Role: models.UserRoleEmployee},
		{Name: "Eli Employee", Email: "eli@example.com", Role: models.UserRoleEmployee},
	}
	for _, in := range users {
		user, err := svc.Users.CreateUser(ctx, in)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", in.Email, err)
		}
		token, err := jwt.Generate(user.ID, string(user.Role))
		if err != nil {
			log.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Printf("%-9s %-22s %s\n", user.Role, user.Email, token)
	}

	website, err := svc.Projects.CreateProject(ctx, service.CreateProjectInput{
		Title:       "Company website",
		Description: "Relaunch of the marketing site",
		Budget:      12000,
	})
	if err != nil {
		log.Fatalf("Failed to create project: %v", err)
	}
	tasks := []service.TaskInput{
		{Title: "Wireframes", Status: models.TaskStatusCompleted, LoggedHours: 6},
		{Title: "Visual design", Status: models.TaskStatusInProgress, LoggedHours: 4},
		{Title: "Frontend build", Status: models.TaskStatusToDo},
		{Title: "Copywriting", Status: models.TaskStatusOnHold},
	}
	for _, in := range tasks {
		if _, _, err := svc.Projects.AddTask(ctx, website.ID, in); err != nil {
			log.Fatalf("Failed to add task %q: %v", in.Title, err)
		}
	}

	onboarding, err := svc.Projects.CreateProject(ctx, service.CreateProjectInput{Title: "Employee onboarding"})
	if err != nil {
		log.Fatalf("Failed to create project: %v", err)
	}
	if _, err := svc.Tasks.CreateTask(ctx, service.CreateTaskInput{
		ProjectID: &onboarding.ID,
		Title:     "New hire setup",
		Subtasks:  []string{"Create accounts", "Order laptop", "Schedule intro meetings"},
	}); err != nil {
		log.Fatalf("Failed to create task: %v", err)
	}

	log.Println("Sample data added successfully!")
}
