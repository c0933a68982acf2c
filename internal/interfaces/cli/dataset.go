package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/druglike/internal/infrastructure/datasource"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/infrastructure/storage/minio"
	"github.com/turtacn/druglike/pkg/errors"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage dataset objects in MinIO",
	}
	cmd.AddCommand(newDatasetUploadCmd(), newDatasetListCmd())
	return cmd
}

// datasetRepo returns the injected repository or connects to MinIO.
func datasetRepo(cc *CLIContext) (minio.DatasetRepository, func(), error) {
	if cc.deps.Datasets != nil {
		return cc.deps.Datasets, func() {}, nil
	}
	client, err := minio.NewMinIOClient(&cc.Config.MinIO, cc.Logger.Named("minio"))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			cc.Logger.Warn("minio close failed", logging.Err(err))
		}
	}
	return minio.NewDatasetRepository(client, cc.Logger.Named("minio")), closeFn, nil
}

func newDatasetUploadCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Validate a TSV dataset and upload it",
		Long: "upload parses the file first so only datasets with generic_name and smiles\n" +
			"columns reach the bucket.  The key defaults to the file name; point\n" +
			"dataset.object_key at it and set dataset.source to minio to serve it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeDatasetSourceInvalid, "failed to read dataset file").WithDetail("path=" + path)
			}
			ds, stats, err := datasource.ParseTSV(bytes.NewReader(data))
			if err != nil {
				return err
			}
			if ds.Len() == 0 {
				return errors.New(errors.ErrCodeDatasetEmpty, "dataset has no complete rows").WithDetail("path=" + path)
			}
			if key == "" {
				key = filepath.Base(path)
			}

			repo, closeFn, err := datasetRepo(cc)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			obj, err := repo.Upload(ctx, key, bytes.NewReader(data), int64(len(data)))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cc.OutputFormat == OutputJSON {
				return printJSON(w, map[string]any{
					"key":     obj.Key,
					"size":    obj.Size,
					"etag":    obj.ETag,
					"rows":    ds.Len(),
					"dropped": stats.Dropped,
				})
			}
			fmt.Fprintf(w, "uploaded %s (%d bytes, %d rows, %d dropped)\n", obj.Key, obj.Size, ds.Len(), stats.Dropped)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "object key (default: the file name)")
	return cmd
}

func newDatasetListCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dataset objects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			repo, closeFn, err := datasetRepo(cc)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			objs, err := repo.List(ctx, prefix)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cc.OutputFormat == OutputJSON {
				return printJSON(w, objs)
			}
			header := []string{"KEY", "SIZE", "MODIFIED"}
			rows := make([][]string, 0, len(objs))
			for _, o := range objs {
				rows = append(rows, []string{o.Key, strconv.FormatInt(o.Size, 10), o.LastModified.UTC().Format(time.RFC3339)})
			}
			if cc.OutputFormat == OutputTSV {
				return printTSV(w, header, rows)
			}
			_, err = fmt.Fprint(w, FormatTable(header, rows))
			return err
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list keys with this prefix")
	return cmd
}
