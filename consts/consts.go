package consts

// UpdateStatusType 记录状态
type UpdateStatusType string

const (
	// UpdatedNothing 未改变
	UpdatedNothing UpdateStatusType = "OK"
	// UpdateNeeded 需要更新
	UpdateNeeded UpdateStatusType = "update needed"
)

const (
	RecordTypeA    = "A"
	RecordTypeAAAA = "AAAA"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderCacheControl  = "Cache-Control"
	MIMEApplicationJSON = "application/json"
)

const (
	DefaultAPIHost       = "https://api.digitalocean.com/v2"
	DefaultIPCheckURL    = "https://ifconfig.me"
	DefaultIPv6CheckURL  = "https://api6.ipify.org"
	DefaultConfigFile    = "dyndns.conf"
	DefaultDDNSName      = "default"
	EnvPrefix            = "DYNDNS"
	IPCacheTimesENV      = "DYNDNS_IP_CACHE_TIMES"
	DefaultIPCacheTimes  = 5
	HTTPClientTimeout    = 30
	NetworkConnectedWait = 5
)
