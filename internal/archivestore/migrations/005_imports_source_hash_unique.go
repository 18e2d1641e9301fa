package migrations

const importsSourceHashUniqueSQL = `
CREATE UNIQUE INDEX idx_imports_source_hash_success ON imports(source_hash) WHERE status = 'success';
`
