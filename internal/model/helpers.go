package model

// UPtr 返回 i 的指针，用于可空外键列
func UPtr(i int) *int {
	return &i
}

// UVal 读取可空 int，nil 视为 0
func UVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// SPtr 返回 s 的指针，用于可空字符串列
func SPtr(s string) *string {
	return &s
}
