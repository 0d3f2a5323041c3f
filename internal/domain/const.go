package domain

const (
	RequesterIdCtxKey   = "cb-requesterId"
	RequesterNameCtxKey = "cb-requesterName"
)
