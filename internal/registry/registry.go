// 包 registry：官方名册（卫生评核“優”名单、稽查不合格名单）的内存结构与加载
// 背景：名册以业者名称为键，每次运行构建一次，之后只读，可在多个 goroutine 间共享
package registry

// Kind：名册类别
type Kind int

const (
	Certified Kind = iota
	InspectionFailure
)

func (k Kind) String() string {
	switch k {
	case Certified:
		return "certified"
	case InspectionFailure:
		return "inspection_failure"
	}
	return "unknown"
}

// Record：名册记录；两类名册共用同一结构
// 约束：稽查不合格记录的登录字号保存在 RegistrationID；District 字段仅评核名册有值
type Record struct {
	Kind           Kind   `json:"-"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	RegistrationID string `json:"registration_id"`
	DistrictCode   string `json:"district_code,omitempty"`
	District       string `json:"district,omitempty"`
	Rating         string `json:"rating,omitempty"`
}

// Registry：名称 → 记录的有序映射
// 约束：遍历顺序为首次插入顺序；同名再次插入时覆盖记录但保留原位置
type Registry struct {
	kind    Kind
	names   []string
	records map[string]Record
}

// New：创建空名册
func New(kind Kind) *Registry {
	return &Registry{kind: kind, records: make(map[string]Record)}
}

// Put：写入记录（仅在构建阶段调用）
func (r *Registry) Put(rec Record) {
	rec.Kind = r.kind
	if _, ok := r.records[rec.Name]; !ok {
		r.names = append(r.names, rec.Name)
	}
	r.records[rec.Name] = rec
}

// Kind：名册类别
func (r *Registry) Kind() Kind { return r.kind }

// Len：记录数；nil 名册视为空
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Get：按名称精确查找
func (r *Registry) Get(name string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	rec, ok := r.records[name]
	return rec, ok
}

// Each：按插入顺序遍历；fn 返回 false 时停止
func (r *Registry) Each(fn func(rec Record) bool) {
	if r == nil {
		return
	}
	for _, n := range r.names {
		if !fn(r.records[n]) {
			return
		}
	}
}

// Names：按插入顺序返回全部名称副本
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}
