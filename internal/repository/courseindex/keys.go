package courseindex

// Key layout:
//
//	{prefix}collection:{name}   collection metadata hash
//	{prefix}alias:{alias}       alias -> target hash
//	{prefix}{name}:{id}         one course hash
//	{prefix}{name}:idx          FT index (aliases share this shape)

const (
	fieldID       = "__id"
	fieldDocument = "__document"
	fieldVector   = "__vector"
	vectorAlias   = "vector"

	metaName       = "name"
	metaDimensions = "dimensions"
	metaModel      = "model"
	metaCreatedAt  = "created_at"
	aliasTarget    = "target"
)

func (r *Repo) metaKey(name string) string   { return r.prefix + "collection:" + name }
func (r *Repo) aliasKey(alias string) string { return r.prefix + "alias:" + alias }
func (r *Repo) docPrefix(name string) string { return r.prefix + name + ":" }
func (r *Repo) docKey(name, id string) string {
	return r.docPrefix(name) + id
}
func (r *Repo) indexName(name string) string { return r.prefix + name + ":idx" }
