package testutil

import (
	"context"
	"database/sql"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

// TestPassword is the password of every fixture user
const TestPassword = "password123"

// Fixtures holds the rows most integration tests start from
type Fixtures struct {
	AdminUser   *models.User
	RegularUser *models.User
	Profile     *models.BusinessProfile
}

// SetupFixtures creates an admin, a regular user and the regular user's profile
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		AdminUser:   CreateUser(t, db, "admin@test.com", true),
		RegularUser: CreateUser(t, db, "owner@test.com", false),
	}
	f.Profile = CreateProfile(t, db, f.RegularUser.ID, SampleProfile())
	return f
}

// CreateUser inserts an active user with TestPassword
func CreateUser(t *testing.T, db *sql.DB, email string, isAdmin bool) *models.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hashedPassword), FirstName: "Test", LastName: "User", IsAdmin: isAdmin}
	err = db.QueryRowContext(context.Background(), `
		INSERT INTO users (email, password_hash, first_name, last_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.IsAdmin).Scan(
		&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	return user
}

// CreateProfile inserts a business profile for a user
func CreateProfile(t *testing.T, db *sql.DB, userID uint, p esg.BusinessProfile) *models.BusinessProfile {
	t.Helper()

	profile := &models.BusinessProfile{UserID: userID, BusinessProfile: p}
	var area any
	if v, ok := p.OfficeAreaSqm.Get(); ok {
		area = v
	}
	err := db.QueryRowContext(context.Background(), `
		INSERT INTO business_profiles (user_id, business_name, industry, employee_count, office_area_sqm, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, userID, p.BusinessName, p.Industry, p.EmployeeCount, area, p.Location).Scan(
		&profile.ID, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create business profile: %v", err)
	}

	return profile
}

// SampleProfile is a small retail business
func SampleProfile() esg.BusinessProfile {
	return esg.BusinessProfile{
		BusinessName:  "Green Corner Shop",
		Industry:      "Retail",
		EmployeeCount: 12,
		OfficeAreaSqm: esg.Some(150.0),
		Location:      "Lagos",
	}
}

// SampleInput is a partially answered questionnaire that passes validation
// and fires several recommendation rules
func SampleInput() esg.ESGInput {
	return esg.ESGInput{
		ElectricityKwh:            esg.Some(2400.0),
		GeneratorUsageLiters:      esg.Some(150.0),
		RenewableEnergyPercentage: esg.Some(10.0),
		WaterUsageLiters:          esg.Some(20000.0),
		WasteRecycling:            true,
		WasteRecyclingFrequency:   esg.FrequencyMonthly,
		TotalEmployees:            12,
		FemaleEmployeesPercentage: esg.Some(40.0),
		SafetyTrainingProvided:    true,
		SafetyTrainingFrequency:   esg.FrequencyAnnually,
		HealthInsurance:           true,
		CodeOfConduct:             true,
		DataPrivacyPolicy:         true,
	}
}
