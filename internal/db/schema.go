package db

// SchemaSQL defines the document table. document_name is the dedup key.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS document SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS document_name ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS path ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS size ON document TYPE int;
    DEFINE FIELD IF NOT EXISTS num_pages ON document TYPE int;
    DEFINE FIELD IF NOT EXISTS summary ON document TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS keywords ON document TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS status ON document TYPE string ASSERT $value IN ["Completed", "Failed"];
    DEFINE FIELD IF NOT EXISTS processing_time ON document TYPE float;
    DEFINE FIELD IF NOT EXISTS created_at ON document TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS idx_document_name ON document FIELDS document_name UNIQUE;
    DEFINE INDEX IF NOT EXISTS idx_document_status ON document FIELDS status;
`
