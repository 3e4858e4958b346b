package repositories

// Records lists the gorm records whose tables are synchronized at startup.
func Records() []any {
	return []any{&bookRecord{}, &activityRecord{}}
}
