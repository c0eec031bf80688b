package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/curriculum-backend/internal/data/repos"
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/batch"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/ingest"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/normalize"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/workbook"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

var tracer = otel.Tracer("curriculum/services")

type ImportService interface {
	Import(ctx context.Context, in ImportInput) (*ImportResult, error)
}

type ImportInput struct {
	FileName string
	MIMEType string
	Data     []byte
	// Mode overrides the acceptance policy for this import. Empty uses the
	// configured default, then the per file type default.
	Mode string
}

// ImportResult is returned on success and, with a *curriculum.PersistenceError,
// after a failed chunk. ImportedCount is always the number of stored rows.
type ImportResult struct {
	ImportID      uuid.UUID
	ImportedCount int
	FileName      string
	FileType      workbook.FileType
	Mode          normalize.Mode
	Rows          int
	Rejected      int
	Chunks        int
	BatchNumber   int
}

type ImportConfig struct {
	ChunkSize int
	Mode      string
}

type importService struct {
	log      *logger.Logger
	outcomes repos.OutcomeRepo
	cfg      ImportConfig
}

func NewImportService(baseLog *logger.Logger, outcomes repos.OutcomeRepo, cfg ImportConfig) ImportService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = batch.DefaultChunkSize
	}
	return &importService{
		log:      baseLog.With("service", "ImportService"),
		outcomes: outcomes,
		cfg:      cfg,
	}
}

func (s *importService) Import(ctx context.Context, in ImportInput) (*ImportResult, error) {
	ctx, span := tracer.Start(ctx, "curriculum.import")
	defer span.End()

	res, err := s.run(ctx, in)
	observeImport(res, err)
	if res != nil {
		span.SetAttributes(
			attribute.String("import.id", res.ImportID.String()),
			attribute.String("import.file_type", string(res.FileType)),
			attribute.Int("import.imported", res.ImportedCount),
			attribute.Int("import.rejected", res.Rejected),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import failed")
	}
	return res, err
}

func (s *importService) run(ctx context.Context, in ImportInput) (*ImportResult, error) {
	log := s.log.WithContext(ctx)
	fileName := strings.TrimSpace(in.FileName)
	ft, err := workbook.DetectType(fileName, in.MIMEType)
	if err != nil {
		log.Warn("Import rejected", "file_name", fileName, "mime", in.MIMEType, "error", err)
		return nil, err
	}
	mode, err := s.resolveMode(in.Mode, ft)
	if err != nil {
		return nil, err
	}

	wb, err := workbook.Parse(in.Data, ft)
	if err != nil {
		log.Warn("Import file unreadable", "file_name", fileName, "file_type", ft, "error", err)
		return nil, err
	}
	rows, report, err := ingest.Outcomes(wb, mode)
	if err != nil {
		log.Warn("Import file has no usable header", "file_name", fileName, "sheets", len(wb.Sheets))
		return nil, err
	}
	for _, sr := range report.Sheets {
		log.Debug("Sheet ingested",
			"file_name", fileName,
			"sheet", sr.Name,
			"mapped_columns", sr.Mapped,
			"rows", sr.Rows,
			"accepted", sr.Accepted,
			"rejected", sr.Rejected,
			"skipped", sr.Skipped,
		)
	}

	res := &ImportResult{
		ImportID: uuid.New(),
		FileName: fileName,
		FileType: ft,
		Mode:     mode,
		Rows:     report.Rows,
		Rejected: report.Rejected,
	}
	for _, o := range rows {
		o.ImportID = res.ImportID
		o.SourceFile = fileName
		o.SourceType = string(ft)
	}

	sink := batch.SinkFunc(func(ctx context.Context, chunk []*curriculum.Outcome) error {
		err := s.outcomes.InsertBatch(ctx, nil, chunk)
		observability.Current().ObserveChunk(err == nil)
		return err
	})
	pr, err := batch.Persist(ctx, sink, rows, s.cfg.ChunkSize)
	res.ImportedCount = pr.Committed
	res.Chunks = pr.Chunks
	if err != nil {
		var pe *curriculum.PersistenceError
		if errors.As(err, &pe) {
			res.ImportedCount = pe.Committed
			res.BatchNumber = pe.Chunk
		}
		log.Error("Import halted on failed chunk",
			"import_id", res.ImportID,
			"file_name", fileName,
			"imported_so_far", res.ImportedCount,
			"batch_number", res.BatchNumber,
			"error", err,
		)
		return res, err
	}

	log.Info("Import complete",
		"import_id", res.ImportID,
		"file_name", fileName,
		"file_type", ft,
		"mode", mode,
		"rows", res.Rows,
		"imported", res.ImportedCount,
		"rejected", res.Rejected,
		"chunks", res.Chunks,
	)
	return res, nil
}

func observeImport(res *ImportResult, err error) {
	result := "ok"
	switch {
	case errors.Is(err, curriculum.ErrMalformedInput):
		result = "malformed"
	case err != nil:
		result = "persistence_failure"
	}
	if res == nil {
		observability.Current().ObserveImport("unknown", result, 0, 0)
		return
	}
	observability.Current().ObserveImport(string(res.FileType), result, res.ImportedCount, res.Rejected)
}

func (s *importService) resolveMode(override string, ft workbook.FileType) (normalize.Mode, error) {
	for _, raw := range []string{override, s.cfg.Mode} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		m, err := normalize.ParseMode(raw)
		if err != nil {
			return "", curriculum.Malformed("invalid acceptance mode", err)
		}
		return m, nil
	}
	return ingest.DefaultMode(ft), nil
}
