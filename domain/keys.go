package domain

// Storage keys follow a fixed convention: the first segment names the entity
// kind, the second scopes the record to its owner (user id for projects and
// tasks, project id for activity and collaboration records). A prefix scan on
// "<kind>:<scope>:" returns exactly that scope's records. User records are
// not owner-partitioned; scanning "user:" covers all of them.

const (
	KindUser     = "user"
	KindProject  = "project"
	KindTask     = "task"
	KindActivity = "activity"
	KindCollab   = "collab"
)

func UserKey(userID string) string {
	return KindUser + ":" + userID
}

func ProjectKey(ownerID, projectID string) string {
	return KindProject + ":" + ownerID + ":" + projectID
}

func TaskKey(ownerID, taskID string) string {
	return KindTask + ":" + ownerID + ":" + taskID
}

func ActivityKey(projectID, activityID string) string {
	return KindActivity + ":" + projectID + ":" + activityID
}

func UserScanPrefix() string {
	return KindUser + ":"
}

func ProjectScanPrefix(ownerID string) string {
	return KindProject + ":" + ownerID + ":"
}

func TaskScanPrefix(ownerID string) string {
	return KindTask + ":" + ownerID + ":"
}

func ActivityScanPrefix(projectID string) string {
	return KindActivity + ":" + projectID + ":"
}

func CollabScanPrefix(projectID string) string {
	return KindCollab + ":" + projectID + ":"
}
