package clock

import "time"

// NowFunc returns the load timestamp source. Override in tests.
var NowFunc = time.Now

// Now returns the current time in UTC.
func Now() time.Time { return NowFunc().UTC() }
