// Package files provides the file catalog and file system helpers.
//
// Catalog is the fixed list of spreadsheets the viewer can open. It resolves
// requested names, marks the default and master entries and fetches raw bytes
// through a Fetcher: DirFetcher for a local directory, HTTPFetcher for a
// static base URL. Probe checks all entries concurrently for readiness.
//
// Discovery lists readable spreadsheets in a directory and Manager resolves
// output paths under the data, exports and logs directories.
//
// Example usage:
//
//	catalog := files.NewCatalog(cfg.Catalog.Files, cfg.Catalog.MasterFile,
//		files.NewDirFetcher(cfg.GetSourceDir()), logger)
//
//	data, err := catalog.Fetch(ctx, "COA_UAE.xlsx")
package files
