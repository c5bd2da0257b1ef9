package schema

// JobExecutionTable represents the 'system.jobexecution' table
type JobExecutionTable struct {
	Table        string
	ID           string
	JobName      string
	Status       string
	StartTime    string
	EndTime      string
	ErrorMessage string
}

// JobExecution is the schema definition for system.jobexecution
var JobExecution = JobExecutionTable{
	Table:        "system.jobexecution",
	ID:           "id",
	JobName:      "jobname",
	Status:       "status",
	StartTime:    "starttime",
	EndTime:      "endtime",
	ErrorMessage: "errormessage",
}

func (t JobExecutionTable) Columns() []string {
	return []string{t.ID, t.JobName, t.Status, t.StartTime, t.EndTime, t.ErrorMessage}
}

// ScheduledJobTable represents the 'system.scheduledjob' table
type ScheduledJobTable struct {
	Table          string
	ID             string
	JobName        string
	CronExpression string
	IsEnabled      string
	LastRun        string
	NextRun        string
}

// ScheduledJob is the schema definition for system.scheduledjob
var ScheduledJob = ScheduledJobTable{
	Table:          "system.scheduledjob",
	ID:             "id",
	JobName:        "jobname",
	CronExpression: "cronexpression",
	IsEnabled:      "isenabled",
	LastRun:        "lastrun",
	NextRun:        "nextrun",
}

func (t ScheduledJobTable) Columns() []string {
	return []string{t.ID, t.JobName, t.CronExpression, t.IsEnabled, t.LastRun, t.NextRun}
}
