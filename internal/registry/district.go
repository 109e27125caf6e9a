package registry

// District：台北市行政区代码与名称
type District struct {
	Code string
	Name string
}

// UnknownDistrict：代码无法识别时使用的占位名称
const UnknownDistrict = "未知"

// districts：固定 12 区对照表；顺序同时决定地址交叉验证时的检查顺序
var districts = [...]District{
	{"63000010", "松山區"},
	{"63000020", "信義區"},
	{"63000030", "大安區"},
	{"63000040", "中山區"},
	{"63000050", "中正區"},
	{"63000060", "大同區"},
	{"63000070", "萬華區"},
	{"63000080", "文山區"},
	{"63000090", "南港區"},
	{"63000100", "內湖區"},
	{"63000110", "士林區"},
	{"63000120", "北投區"},
}

// Districts：返回对照表副本
func Districts() []District {
	return append([]District(nil), districts[:]...)
}

// DistrictNames：按对照表顺序返回区名
func DistrictNames() []string {
	out := make([]string, len(districts))
	for i, d := range districts {
		out[i] = d.Name
	}
	return out
}

// DistrictName：代码转区名，未知代码返回 UnknownDistrict
func DistrictName(code string) string {
	for _, d := range districts {
		if d.Code == code {
			return d.Name
		}
	}
	return UnknownDistrict
}
