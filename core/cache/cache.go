package cache

type IIpCache interface {
	// Check records addr and reports whether the provider must be consulted.
	Check(addr string) bool
	Reset()
	IncreaseFailedTimes()
	ResetFailedTimes()
	GetFailedTimes() int
	GetTimes() int
	GetAddr() string
}
