package domain

import "time"

// JobStatus enumerates validation job lifecycle states.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
)

// FileState enumerates per-file outcomes within a job.
type FileState string

const (
	FilePending    FileState = "pending"
	FileProcessing FileState = "processing"
	FileValidated  FileState = "validated"
	FileError      FileState = "error"
)

// Wire values spoken by the HTTP surface. The backend reports statuses in
// Portuguese; internal logic only ever sees the closed tag sets above, the
// mapping happens at the boundary.
const (
	wireJobPending     = "pendente"
	wireJobProcessing  = "processando"
	wireJobCompleted   = "completo"
	wireFilePending    = "pendente"
	wireFileProcessing = "processando"
	wireFileValidated  = "validado"
	wireFileError      = "erro"
)

// Wire returns the Portuguese wire tag for the status.
func (s JobStatus) Wire() string {
	switch s {
	case JobPending:
		return wireJobPending
	case JobProcessing:
		return wireJobProcessing
	case JobCompleted:
		return wireJobCompleted
	}
	return string(s)
}

// ParseJobStatus maps a wire tag to a JobStatus. The second return value is
// false for unknown tags.
func ParseJobStatus(wire string) (JobStatus, bool) {
	switch wire {
	case wireJobPending:
		return JobPending, true
	case wireJobProcessing:
		return JobProcessing, true
	case wireJobCompleted:
		return JobCompleted, true
	}
	return "", false
}

// Wire returns the Portuguese wire tag for the file state.
func (s FileState) Wire() string {
	switch s {
	case FilePending:
		return wireFilePending
	case FileProcessing:
		return wireFileProcessing
	case FileValidated:
		return wireFileValidated
	case FileError:
		return wireFileError
	}
	return string(s)
}

// ParseFileState maps a wire tag to a FileState.
func ParseFileState(wire string) (FileState, bool) {
	switch wire {
	case wireFilePending:
		return FilePending, true
	case wireFileProcessing:
		return FileProcessing, true
	case wireFileValidated:
		return FileValidated, true
	case wireFileError:
		return FileError, true
	}
	return "", false
}

// Terminal reports whether the job will not progress further on its own.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted
}

// FileResult is the per-file outcome tracked inside a job. The server owns
// these; clients only ever replace the whole slice from a status response.
type FileResult struct {
	Filename string
	Path     string
	State    FileState
	IsValid  bool
	Error    string
}

// RejectedFile records an upload entry that was refused before validation,
// typically because it was not a PDF.
type RejectedFile struct {
	Filename string
	Reason   string
}

// Job is one server-side batch validation run.
type Job struct {
	ID         string
	CreatedAt  time.Time
	Status     JobStatus
	Progress   int
	Files      []FileResult
	Rejected   []RejectedFile
	ReportPath string
}

// JobUpdate is one status snapshot as seen by a client: the decoded body of a
// single status query with wire tags already mapped.
type JobUpdate struct {
	JobID      string
	Status     JobStatus
	Progress   int
	Files      []FileResult
	ReportPath string
}

// ReportAvailable reports whether the update indicates a downloadable report.
func (u *JobUpdate) ReportAvailable() bool {
	return u != nil && u.ReportPath != ""
}
