package enrich

import (
	"sort"
	"strings"

	"beresta/internal/dict"
)

// FindBestEntityType подбирает тип сущности с наибольшим пересечением свойств
// с заголовками шаблона. Возвращает имя или "" когда пересечений нет.
//
// Счёт — тройка (match_count, ratio, country_bonus), сравнение лексикографическое.
// Сущности-зеркала режутся вдвое (целочисленно). Кандидатов обходим по
// отсортированным именам, побеждает строго больший счёт: при полном равенстве
// остаётся лексикографически меньшее имя — детерминированно между запусками.
func FindBestEntityType(headers []string, byEntity dict.EntityIndex, country string) string {
	keys := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		keys[dict.NormalizeKey(h)] = struct{}{}
	}

	names := make([]string, 0, len(byEntity))
	for name := range byEntity {
		names = append(names, name)
	}
	sort.Strings(names)

	bestName := ""
	bestCount := 0
	bestRatio := 0.0
	bestBonus := 0

	for _, name := range names {
		props := byEntity[name]
		match := 0
		for k := range keys {
			if _, ok := props[k]; ok {
				match++
			}
		}
		if hasMirrorSuffix(name) {
			match /= 2
		}
		// зеркало, срезанное до нуля, кандидатом не считается
		if match == 0 {
			continue
		}
		bonus := countryBonus(name, country)
		ratio := float64(match) / float64(max(len(props), 1))

		if match > bestCount ||
			(match == bestCount && ratio > bestRatio) ||
			(match == bestCount && ratio == bestRatio && bonus > bestBonus) {
			bestName, bestCount, bestRatio, bestBonus = name, match, ratio, bonus
		}
	}

	return bestName
}

func hasMirrorSuffix(entity string) bool {
	for _, suf := range mirrorEntitySuffixes {
		if strings.HasSuffix(entity, suf) {
			return true
		}
	}
	return false
}

// countryBonus: +1 за суффикс выбранной страны, -1 за суффикс чужой, иначе 0.
func countryBonus(entity, country string) int {
	if country == "" {
		return 0
	}
	if strings.HasSuffix(entity, country) {
		return 1
	}
	for _, oc := range CountryCodes {
		if oc != country && strings.HasSuffix(entity, oc) {
			return -1
		}
	}
	return 0
}
