package knowledge

import "strings"

// TagRule 标签路由规则：任一关键词命中即归入该标签
type TagRule struct {
	Label    string
	Keywords []string
}

// TagClassifier 关键词标签分类器
//
// 规则按顺序匹配，第一条命中的规则获胜。这是尽力而为的路由启发式，
// 未命中返回空串，调用方退化为无过滤检索。
type TagClassifier struct {
	rules []TagRule
}

// NewTagClassifier 创建标签分类器
func NewTagClassifier(rules []TagRule) *TagClassifier {
	return &TagClassifier{rules: rules}
}

// Classify 对文本做关键词匹配，返回标签，未命中返回空串
func (c *TagClassifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return rule.Label
			}
		}
	}
	return ""
}
