package model

import "time"

// IssueCategory extends the built-in issue types with staff-defined ones.
type IssueCategory struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	IssueCategoryCode string    `gorm:"column:issue_category_code;size:20;not null;uniqueIndex" json:"issue_category_code"`
	IssueCategoryName string    `gorm:"column:issue_category_name;size:100;not null" json:"issue_category_name"`
	CreatedAt         time.Time `json:"created_at"`
}
