package config

// GeoConfig IP归属地查询配置
type GeoConfig struct {
	// Enabled 是否启用归属地查询
	Enabled bool `yaml:"enabled"`
	// Endpoint 查询服务地址，%s 占位符填充IP
	Endpoint string `yaml:"endpoint"`
}

// WithDefaults 填充缺省配置
func (c GeoConfig) WithDefaults() GeoConfig {
	if c.Endpoint == "" {
		c.Endpoint = "http://ip-api.com/json/%s"
	}
	return c
}
