// Package tables holds the read-only lookup tables consumed by the mapper
// and the loaders that build them from data files.
//
// Three table shapes exist:
//   - Set: the codes of one standard, with their hierarchy depth
//   - Mapping: a source code to one or more target codes
//   - Revisions: an older ICD-10-CM code to its current-revision replacement
//
// Files are decoded by extension. JSON files (".json") are read with
// jsonparser; a membership JSON file may also be a FHIR CodeSystem. YAML files
// (".yaml", ".yml") are read with yaml.v3.
//
// Example usage:
//
//	t, stats, err := tables.Load(os.DirFS(dir), tables.DefaultLayout(), logger.Default())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(stats.Entries[tables.KindICD10Codes])
package tables
