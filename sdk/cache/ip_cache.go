package cache

import (
	"os"
	"strconv"

	"github.com/jxo-me/dyndns/consts"
	core "github.com/jxo-me/dyndns/core/cache"
)

var _ core.IIpCache = (*IpCache)(nil)

// IpCache 上次IP缓存
type IpCache struct {
	Addr          string // 缓存地址
	Times         int    // 剩余次数
	TimesFailedIP int    // 获取ip失败的次数
}

// Check returns true when newAddr differs from the cached address or the
// cached address has been reused DYNDNS_IP_CACHE_TIMES times.
func (d *IpCache) Check(newAddr string) bool {
	if newAddr == "" {
		return true
	}
	// 地址改变 或 达到剩余次数
	if d.Addr != newAddr || d.Times <= 1 {
		d.Addr = newAddr
		d.Times = cacheTimes() + 1
		return true
	}
	d.Times--
	return false
}

// Reset forgets the cached address so the next Check forces a compare.
func (d *IpCache) Reset() {
	d.Addr = ""
	d.Times = 0
}

func (d *IpCache) IncreaseFailedTimes() {
	d.TimesFailedIP++
}

func (d *IpCache) ResetFailedTimes() {
	d.TimesFailedIP = 0
}

func (d *IpCache) GetFailedTimes() int {
	return d.TimesFailedIP
}

func (d *IpCache) GetTimes() int {
	return d.Times
}

func (d *IpCache) GetAddr() string {
	return d.Addr
}

func cacheTimes() int {
	times, err := strconv.Atoi(os.Getenv(consts.IPCacheTimesENV))
	if err != nil || times < 0 {
		return consts.DefaultIPCacheTimes
	}
	return times
}
