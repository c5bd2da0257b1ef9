package jobs

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
