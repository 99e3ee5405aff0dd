package pg

// DDL возвращает карту имя -> idempotent SQL (create ... if not exists).
// Ключи сортируются при применении, отсюда числовые префиксы.
func DDL() map[string]string {
	return map[string]string{
		"000_schema": `create schema if not exists beresta;`,
		"100_configs": `
create table if not exists beresta.configs (
  name text primary key,
  saved_at timestamp with time zone not null,
  country text not null default '',
  skip_operation boolean not null default false,
  files_used jsonb not null default '[]',
  picklist_assignments jsonb not null default '{}'
);`,
	}
}
