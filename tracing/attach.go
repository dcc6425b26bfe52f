package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/vstim/hooking"
)

// Attach lets hook observe domain. Attaching the same hook to a domain twice
// panics.
func Attach(domain hooking.NamedHookable, hook hooking.Hook) {
	if _, isFunc := hook.(hooking.HookFunc); !isFunc {
		for _, h := range domain.Hooks() {
			if _, ok := h.(hooking.HookFunc); ok {
				continue
			}

			if h == hook {
				panic(fmt.Sprintf(
					"domain %s already has tracer %s",
					domain.Name(), reflect.TypeOf(hook)))
			}
		}
	}

	domain.AcceptHook(hook)
}

// domainName returns the name of the domain that invoked a hook.
func domainName(ctx hooking.HookCtx) string {
	if named, ok := ctx.Domain.(hooking.NamedHookable); ok {
		return named.Name()
	}

	return ""
}
