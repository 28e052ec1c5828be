package runtime

import "fmt"

// NativeContext is the realm an instance executes in.
type NativeContext struct {
	isolate *Isolate
	name    string
	id      uint32
}

func (c *NativeContext) Isolate() *Isolate { return c.isolate }

func (c *NativeContext) ID() uint32 { return c.id }

func (c *NativeContext) Name() string { return c.name }

func (c *NativeContext) String() string {
	if c == nil {
		return "NoContext"
	}
	return fmt.Sprintf("NativeContext(%d:%s)", c.id, c.name)
}
