package models

// OrderCounter serializes order-number allocation per channel+date bucket
// (e.g. "APP-020926"). The increment runs as a conditional UPDATE inside
// the checkout transaction so two concurrent checkouts cannot draw the
// same sequence.
type OrderCounter struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Bucket  string `gorm:"type:varchar(20);uniqueIndex;not null" json:"bucket"`
	LastSeq int    `gorm:"not null;default:0" json:"last_seq"`
}
