package models

type Tag struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;uniqueIndex;not null"`
}

// MarshalText lets a tag list render as plain names.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.Name), nil
}
