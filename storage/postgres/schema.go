// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package postgres

// Schema statements, applied in order by Store.Init.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS nutrirag_collections (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		metadata JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS nutrirag_documents (
		collection_id BIGINT NOT NULL REFERENCES nutrirag_collections(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		seq BIGSERIAL,
		text TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector NOT NULL,
		PRIMARY KEY (collection_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_nutrirag_documents_seq ON nutrirag_documents(collection_id, seq)`,
}

const (
	insertCollectionSQL = `INSERT INTO nutrirag_collections (name, metadata) VALUES ($1, $2) RETURNING id`

	selectCollectionSQL = `SELECT id, metadata FROM nutrirag_collections WHERE name = $1`

	deleteCollectionSQL = `DELETE FROM nutrirag_collections WHERE name = $1`

	listCollectionsSQL = `
		SELECT c.name, c.metadata, COUNT(d.id)
		FROM nutrirag_collections c
		LEFT JOIN nutrirag_documents d ON d.collection_id = c.id
		GROUP BY c.id, c.name, c.metadata
		ORDER BY c.name`

	lockCollectionSQL = `SELECT id FROM nutrirag_collections WHERE id = $1 FOR UPDATE`

	insertDocumentSQL = `
		INSERT INTO nutrirag_documents (collection_id, id, text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)`

	upsertDocumentSQL = `
		INSERT INTO nutrirag_documents (collection_id, id, text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection_id, id) DO UPDATE SET
			text = EXCLUDED.text,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`

	selectDocumentSQL = `SELECT text, metadata FROM nutrirag_documents WHERE collection_id = $1 AND id = $2`

	countDocumentsSQL = `SELECT COUNT(*) FROM nutrirag_documents WHERE collection_id = $1`

	queryDocumentsSQL = `
		SELECT id, text, metadata, 1 - (embedding <=> $2) AS score
		FROM nutrirag_documents
		WHERE collection_id = $1 AND 1 - (embedding <=> $2) >= $4
		ORDER BY embedding <=> $2, seq
		LIMIT $3`
)
