package ammo

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// PacketInfo is what the TCP/IP filter sees of a packet
type PacketInfo struct {
	Src     string
	Dst     string
	Version int
	TTL     int
	SrcPort int
	DstPort int
	Seq     uint32
	Ack     uint32
	Window  int
}

// Filter is a compiled Lua boolean expression. A nil *Filter matches
// everything.
//
// TCP/IP filters see the tables ip (src, dst, version, ttl) and tcp (sport,
// dport, seq, ack, window). HTTP filters see http (method, uri, version,
// headers with lower case names, body). The helpers contains, startswith
// and endswith take two strings; "!=" is accepted for "~="
type Filter struct {
	expr  string
	state *lua.LState
	fn    *lua.LFunction
}

// NewFilter compiles expr. An empty expression yields a nil filter
func NewFilter(expr string) (*Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	L.SetGlobal("contains", L.NewFunction(stringPredicate(strings.Contains)))
	L.SetGlobal("startswith", L.NewFunction(stringPredicate(strings.HasPrefix)))
	L.SetGlobal("endswith", L.NewFunction(stringPredicate(strings.HasSuffix)))

	fn, err := L.LoadString("return (" + luaOperators(expr) + ")")
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}

	return &Filter{
		expr:  expr,
		state: L,
		fn:    fn,
	}, nil
}

func stringPredicate(pred func(s, sub string) bool) lua.LGFunction {
	return func(L *lua.LState) int {
		s := lua.LVAsString(L.Get(1))
		sub := lua.LVAsString(L.Get(2))
		L.Push(lua.LBool(pred(s, sub)))
		return 1
	}
}

// luaOperators rewrites "!=" outside string literals to "~="
func luaOperators(expr string) string {
	var sb strings.Builder
	var quote byte

	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(expr) {
				sb.WriteByte(c)
				i++
				c = expr[i]
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '!' && i+1 < len(expr) && expr[i+1] == '=':
			c = '~'
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Close releases the Lua state
func (f *Filter) Close() {
	if f != nil {
		f.state.Close()
	}
}

// MatchPacket evaluates the filter against a TCP/IP packet
func (f *Filter) MatchPacket(p PacketInfo) (bool, error) {
	if f == nil {
		return true, nil
	}

	L := f.state

	ip := L.NewTable()
	ip.RawSetString("src", lua.LString(p.Src))
	ip.RawSetString("dst", lua.LString(p.Dst))
	ip.RawSetString("version", lua.LNumber(p.Version))
	ip.RawSetString("ttl", lua.LNumber(p.TTL))

	tcp := L.NewTable()
	tcp.RawSetString("sport", lua.LNumber(p.SrcPort))
	tcp.RawSetString("dport", lua.LNumber(p.DstPort))
	tcp.RawSetString("seq", lua.LNumber(p.Seq))
	tcp.RawSetString("ack", lua.LNumber(p.Ack))
	tcp.RawSetString("window", lua.LNumber(p.Window))

	L.SetGlobal("ip", ip)
	L.SetGlobal("tcp", tcp)

	return f.eval()
}

// MatchHTTP evaluates the filter against a request
func (f *Filter) MatchHTTP(req *Request) (bool, error) {
	if f == nil {
		return true, nil
	}

	L := f.state

	headers := L.NewTable()
	for _, h := range req.Headers {
		key := strings.ToLower(h.Name)
		if headers.RawGetString(key) == lua.LNil {
			headers.RawSetString(key, lua.LString(h.Value))
		}
	}

	http := L.NewTable()
	http.RawSetString("method", lua.LString(req.Method))
	http.RawSetString("uri", lua.LString(req.URI))
	http.RawSetString("version", lua.LString(req.Version))
	http.RawSetString("headers", headers)
	http.RawSetString("body", lua.LString(req.Body))

	L.SetGlobal("http", http)

	return f.eval()
}

func (f *Filter) eval() (bool, error) {
	L := f.state

	L.Push(f.fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return false, fmt.Errorf("filter %q failed: %w", f.expr, err)
	}

	result := L.Get(-1)
	L.Pop(1)

	return lua.LVAsBool(result), nil
}
