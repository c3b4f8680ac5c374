// Package domain holds the entity types of the data model. These are
// plain structs shared by every component; persistence-specific tags
// live alongside the GORM row types in internal/store/postgres, not
// here, so the domain stays storage-agnostic.
package domain

import "time"

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleEmployer   Role = "employer"
	RoleAdmin      Role = "admin"
)

type BankInfo struct {
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	BankName      string `json:"bank_name"`
}

type User struct {
	ID                    string     `json:"id"`
	ExternalID            string     `json:"external_id"`
	Email                 string     `json:"email"`
	Role                  Role       `json:"role"`
	DisplayName           string     `json:"display_name"`
	Country               string     `json:"country"`
	CodeHostUsername      string     `json:"code_host_username,omitempty"`
	Profession            string     `json:"profession,omitempty"`
	SkillTags             []string   `json:"skill_tags,omitempty"`
	SavedCodeHostUsers    []string   `json:"saved_code_host_usernames,omitempty"`
	CompanyName           string     `json:"company_name,omitempty"`
	PaymentCustomerHandle string     `json:"-"`
	Balance               float64    `json:"balance"`
	TotalEarnings         float64    `json:"total_earnings"`
	BankInfo              *BankInfo  `json:"bank_info,omitempty"`
	Verified              bool       `json:"verified"`
	Active                bool       `json:"active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	DeactivatedAt         *time.Time `json:"deactivated_at,omitempty"`
}

const MaxSkillTags = 30
