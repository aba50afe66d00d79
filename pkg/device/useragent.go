package device

import (
	"context"
	"time"

	"github.com/goliatone/go-attribution/pkg/interfaces/executor"
)

// UserAgentResolver obtains the platform's browser-equivalent user-agent
// string. Real implementations depend on a web-rendering component and must
// run on the host's UI-affinity executor; resolution is asynchronous and
// never cached.
type UserAgentResolver interface {
	UserAgent(ctx context.Context) (string, error)
}

// UserAgentFunc adapts a function to UserAgentResolver.
type UserAgentFunc func(ctx context.Context) (string, error)

func (f UserAgentFunc) UserAgent(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticUserAgent resolves to a fixed string.
func StaticUserAgent(ua string) UserAgentResolver {
	return UserAgentFunc(func(ctx context.Context) (string, error) {
		return ua, nil
	})
}

// ResolveUserAgent runs the resolver on the given executor and waits at most
// timeout for the result. A nil resolver, resolver error, or timeout yields
// an empty string; the caller omits the user_agent field in that case.
func ResolveUserAgent(ctx context.Context, exec executor.Executor, resolver UserAgentResolver, timeout time.Duration) string {
	if resolver == nil {
		return ""
	}
	if exec == nil {
		exec = executor.Inline{}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		ua  string
		err error
	}
	out := make(chan result, 1)
	exec.Do(func() {
		ua, err := resolver.UserAgent(ctx)
		out <- result{ua: ua, err: err}
	})

	select {
	case res := <-out:
		if res.err != nil {
			return ""
		}
		return res.ua
	case <-ctx.Done():
		return ""
	}
}
