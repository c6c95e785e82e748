package service

import (
	"context"
	"fmt"
	"net"

	"duanlian/pkg/core/config"
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/util"
)

// GeoInfo 地理位置解析结果
type GeoInfo struct {
	Country string  `json:"country"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// GeoResolver IP地理位置解析接口
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (*GeoInfo, error)
}

// GeoService 基于ip-api风格接口的地理位置解析。
// 内网/回环IP直接跳过，失败只记日志不向上传播。
type GeoService struct {
	cfg config.GeoConfig
	log *logger.Log
	err *errorc.ErrorBuilder
}

// NewGeoService 创建地理位置解析服务
func NewGeoService(cfg config.GeoConfig, log *logger.Log) *GeoService {
	return &GeoService{
		cfg: cfg.WithDefaults(),
		log: log.WithEntryName("GeoService"),
		err: errorc.NewErrorBuilder("GeoService"),
	}
}

// Resolve 解析IP的地理位置，未启用、内网IP或解析失败时返回nil
func (s *GeoService) Resolve(ctx context.Context, ip string) (*GeoInfo, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}
	if IsPrivateIP(ip) {
		return nil, nil
	}

	result, err := util.HttpGet(fmt.Sprintf(s.cfg.Endpoint, ip), nil)
	if err != nil {
		return nil, s.err.New("地理位置查询失败", err).Third()
	}

	if result.Get("status").String() != "success" {
		s.log.WithField("ip", ip).WithField("message", result.Get("message").String()).
			Debug("地理位置查询无结果")
		return nil, nil
	}

	return &GeoInfo{
		Country: result.Get("country").String(),
		City:    result.Get("city").String(),
		Region:  result.Get("regionName").String(),
		Lat:     result.Get("lat").Float(),
		Lon:     result.Get("lon").Float(),
	}, nil
}

// IsPrivateIP 是否为内网、回环或非法IP
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() ||
		parsed.IsLinkLocalUnicast() || parsed.IsUnspecified()
}
