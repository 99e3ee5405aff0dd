package dict

// BuildIndexes строит оба индекса по разобранному словарю.
// GlobalIndex хранит свойства в порядке документа (первый встретившийся — первый в списке),
// EntityIndex — по одному свойству на ключ внутри сущности (поздний дубль перетирает ранний).
// Кривые/пустые атрибуты ошибкой не считаются.
func BuildIndexes(entities []*Entity) (GlobalIndex, EntityIndex) {
	global := make(GlobalIndex)
	byEntity := make(EntityIndex, len(entities))

	for _, e := range entities {
		props := make(map[string]*PropertyEntry, len(e.Properties))
		for _, p := range e.Properties {
			key := NormalizeKey(p.Name)
			global[key] = append(global[key], p)
			props[key] = p
		}
		byEntity[e.Name] = props
	}
	return global, byEntity
}
