package geelark

// PhoneStatusName maps a cloud-phone status code to a display label.
// Unrecognized codes map to "Unknown" so newer platform values never panic.
func PhoneStatusName(status int) string {
	switch status {
	case PhoneStatusRunning:
		return "Running"
	case PhoneStatusStarting:
		return "Starting"
	case PhoneStatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// TaskStatusName maps a task status code to a display label.
func TaskStatusName(status int) string {
	switch status {
	case TaskStatusWaiting:
		return "Waiting"
	case TaskStatusInProgress:
		return "In progress"
	case TaskStatusCompleted:
		return "Completed"
	case TaskStatusFailed:
		return "Failed"
	case TaskStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// TaskTypeName maps a task type discriminator to a display label.
func TaskTypeName(taskType int) string {
	switch taskType {
	case TaskTypeVideo:
		return "Publish video"
	case TaskTypeWarmup:
		return "Account warmup"
	case TaskTypeCarousel:
		return "Publish carousel"
	case TaskTypeLogin:
		return "Account login"
	case TaskTypeProfile:
		return "Edit profile"
	case TaskTypeCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}
