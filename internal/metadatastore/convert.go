package metadatastore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"ctx-go/internal/ctxmodel"
	"ctx-go/internal/metadatastore/sqlc"
)

func packFromRow(row sqlc.Pack) *ctxmodel.Pack {
	return &ctxmodel.Pack{
		ID:   row.ID,
		Name: row.Name,
		Policy: ctxmodel.RenderPolicy{
			BudgetTokens: int(row.BudgetTokens),
			Ordering:     row.Ordering,
		},
		CreatedAt: row.CreatedAt,
	}
}

func artifactToInsertParams(a *ctxmodel.Artifact) (sqlc.InsertArtifactParams, error) {
	var excludeJSON sql.NullString
	if len(a.Exclude) > 0 {
		b, err := json.Marshal(a.Exclude)
		if err != nil {
			return sqlc.InsertArtifactParams{}, fmt.Errorf("marshaling exclude list: %w", err)
		}
		excludeJSON = sql.NullString{String: string(b), Valid: true}
	}

	return sqlc.InsertArtifactParams{
		ID:            a.ID,
		Kind:          string(a.Kind),
		SourceURI:     a.SourceURI,
		Path:          nullableString(a.Path),
		LineStart:     nullableIntIf(a.LineStart != 0 || a.Kind == ctxmodel.KindFileRange, int64(a.LineStart)),
		LineEnd:       nullableIntIf(a.LineEnd != 0 || a.Kind == ctxmodel.KindFileRange, int64(a.LineEnd)),
		InlineContent: nullableString(a.InlineContent),
		Title:         nullableString(a.Title),
		Recursive:     sql.NullBool{Bool: a.Recursive, Valid: a.Kind == ctxmodel.KindCollectionMdDir},
		MaxFiles:      nullableIntIf(a.Kind == ctxmodel.KindCollectionMdDir, int64(a.MaxFiles)),
		ExcludeJSON:   excludeJSON,
		Pattern:       nullableString(a.Pattern),
		Base:          nullableString(a.Base),
		Head:          nullableString(a.Head),
		ContentHash:   nullableString(a.ContentHash),
		ByteSize:      nullableIntIf(a.ByteSize != 0, a.ByteSize),
		MimeType:      nullableString(a.MimeType),
	}, nil
}

func artifactFromRow(row sqlc.Artifact) (*ctxmodel.Artifact, error) {
	a := &ctxmodel.Artifact{
		ID:            row.ID,
		Kind:          ctxmodel.ArtifactKind(row.Kind),
		SourceURI:     row.SourceURI,
		Path:          row.Path.String,
		LineStart:     int(row.LineStart.Int64),
		LineEnd:       int(row.LineEnd.Int64),
		InlineContent: row.InlineContent.String,
		Title:         row.Title.String,
		Recursive:     row.Recursive.Bool,
		MaxFiles:      int(row.MaxFiles.Int64),
		Pattern:       row.Pattern.String,
		Base:          row.Base.String,
		Head:          row.Head.String,
		ContentHash:   row.ContentHash.String,
		ByteSize:      row.ByteSize.Int64,
		MimeType:      row.MimeType.String,
		CreatedAt:     row.CreatedAt,
	}
	if row.ExcludeJSON.Valid {
		if err := json.Unmarshal([]byte(row.ExcludeJSON.String), &a.Exclude); err != nil {
			return nil, fmt.Errorf("unmarshaling exclude list: %w", err)
		}
	}
	return a, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableIntIf(valid bool, v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: valid}
}
