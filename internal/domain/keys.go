package domain

type CtxKey string

const (
	KeyRequestID CtxKey = "RequestID"
	KeySubject   CtxKey = "Subject"
)
