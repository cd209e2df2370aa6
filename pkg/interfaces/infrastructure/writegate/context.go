package writegate

import "context"

type ctxKey struct{}

// WithWriteToken 将写入 token 绑定到 context
//
//	token, err := gate.EnableWriteFence("migration")
//	if err != nil {
//	    return err
//	}
//	defer gate.DisableWriteFence(token)
//	ctx = writegate.WithWriteToken(ctx, token)
func WithWriteToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

// TokenFromContext 读取 context 中的写入 token，不存在时返回空字符串
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(ctxKey{}).(string); ok {
		return s
	}
	return ""
}
