package utils

import "context"

type contextKey string

const (
	MerchantSubjectKey contextKey = "merchant_subject"
	MerchantRoleKey    contextKey = "merchant_role"
)

// SetMerchantContext stores the authenticated caller (called by middleware)
func SetMerchantContext(ctx context.Context, subject, role string) context.Context {
	ctx = context.WithValue(ctx, MerchantSubjectKey, subject)
	ctx = context.WithValue(ctx, MerchantRoleKey, role)
	return ctx
}

// GetMerchantSubject retrieves the caller subject safely
func GetMerchantSubject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(MerchantSubjectKey).(string)
	return sub, ok && sub != ""
}

func GetMerchantRole(ctx context.Context) string {
	role, _ := ctx.Value(MerchantRoleKey).(string)
	return role
}
