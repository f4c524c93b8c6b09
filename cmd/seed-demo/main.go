package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tahfidzid/mutqin-backend/internal/config"
	"github.com/tahfidzid/mutqin-backend/internal/database"
	"github.com/tahfidzid/mutqin-backend/internal/logger"
	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
	"github.com/tahfidzid/mutqin-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	programRepo := repository.NewProgramRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	dailyLogRepo := repository.NewDailyLogRepository(pool)

	programService := service.NewProgramService(programRepo)
	classService := service.NewClassService(classRepo)
	studentService := service.NewStudentService(studentRepo)
	dailyLogService := service.NewDailyLogService(dailyLogRepo)

	fmt.Println("=== Seeding Demo Data ===")

	// ─── Program ────────────────────────────────────────────────────────
	var programID int
	err = pool.QueryRow(ctx, "SELECT id FROM programs WHERE name = $1", "Tahfidz 30 Juz").Scan(&programID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing program")
		}
		program := &model.Program{
			Name:        "Tahfidz 30 Juz",
			Description: "Program hafalan Al-Qur'an 30 juz dengan muraja'ah harian",
			Active:      true,
		}
		if err := programService.Create(ctx, program); err != nil {
			log.Fatal().Err(err).Msg("Failed to create program")
		}
		programID = program.ID
		fmt.Printf("Created program with ID: %d\n", programID)
	} else {
		fmt.Printf("Found existing program with ID: %d\n", programID)
	}

	// ─── Classes ────────────────────────────────────────────────────────
	link := "https://meet.example.com/al-fatih"
	password := "alfatih"
	classes := []*model.Class{
		{ProgramID: programID, Name: "Halaqah Al-Fatih", Gender: model.GenderMale, Active: true, RoomStart: 1, MeetingLink: &link, MeetingPassword: &password},
		{ProgramID: programID, Name: "Halaqah An-Nur", Gender: model.GenderFemale, Active: true, RoomStart: 10},
	}
	for _, class := range classes {
		var existingID int
		err := pool.QueryRow(ctx, "SELECT id FROM classes WHERE name = $1", class.Name).Scan(&existingID)
		if err == nil {
			class.ID = existingID
			fmt.Printf("Found existing class %q with ID: %d\n", class.Name, existingID)
			continue
		}
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing class")
		}
		if err := classService.Create(ctx, class); err != nil {
			log.Fatal().Err(err).Msg("Failed to create class")
		}
		fmt.Printf("Created class %q with ID: %d\n", class.Name, class.ID)
	}

	maleNames := []string{
		"Ahmad Fauzan", "Muhammad Rizki", "Abdullah Hakim", "Umar Faruq", "Zaid Ramadhan",
		"Hasan Basri", "Ilham Maulana", "Salman Alfarisi", "Bilal Saputra", "Hamzah Yusuf",
	}
	femaleNames := []string{
		"Aisyah Putri", "Fatimah Azzahra", "Khadijah Rahma", "Maryam Salsabila", "Zainab Husna",
		"Hafshah Kamila", "Ruqayyah Nada", "Sumayyah Dewi", "Asma Nabila", "Safiyya Zahra",
	}

	successCount := 0
	seed := func(names []string, class *model.Class, offset int) {
		for i, name := range names {
			student := &model.Student{
				NIS:     fmt.Sprintf("2025%04d", offset+i+1),
				Name:    name,
				Gender:  class.Gender,
				ClassID: class.ID,
				Active:  true,
			}
			if err := studentService.Create(ctx, student); err != nil {
				fmt.Printf("Error creating student %s (NIS: %s): %v\n", student.Name, student.NIS, err)
				continue
			}
			successCount++

			// A verified log history so committed_only has something to chew on.
			// Students at even offsets report every day, the rest roughly half.
			days := 14
			if (offset+i)%2 != 0 {
				days = 7
			}
			for d := 1; d <= days; d++ {
				l := &model.DailyLog{
					StudentID: student.ID,
					LogDate:   time.Now().UTC().AddDate(0, 0, -d),
					Pages:     2,
				}
				if err := dailyLogService.Submit(ctx, l); err != nil {
					fmt.Printf("Error creating daily log for %s: %v\n", student.Name, err)
					continue
				}
				if _, err := pool.Exec(ctx, "UPDATE daily_logs SET verified = TRUE WHERE id = $1", l.ID); err != nil {
					fmt.Printf("Error verifying daily log for %s: %v\n", student.Name, err)
				}
			}
		}
	}

	seed(maleNames, classes[0], 0)
	seed(femaleNames, classes[1], len(maleNames))

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", successCount, len(maleNames)+len(femaleNames))
}
