package invoice

const ublNamespaces = `xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2" ` +
	`xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2" ` +
	`xmlns:ext="urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"`

const directInvoiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2" ` + ublNamespaces + `>
  <ext:UBLExtensions>
    <ext:UBLExtension>
      <ext:ExtensionContent>
        <CustomTagGeneral>
          <Interoperabilidad>
            <Group schemeName="Sector Salud">
              <Collection schemeName="Usuario">
                <AdditionalInformation><Name>CODIGO_PRESTADOR</Name><Value>110010001</Value></AdditionalInformation>
                <AdditionalInformation><Name>TIPO_DOCUMENTO_IDENTIFICACION</Name><Value>CC</Value></AdditionalInformation>
                <AdditionalInformation><Name>NUMERO_DOCUMENTO_IDENTIFICACION</Name><Value>1020304050</Value></AdditionalInformation>
                <AdditionalInformation><Name>PRIMER_APELLIDO</Name><Value>PEREZ</Value></AdditionalInformation>
                <AdditionalInformation><Name>PRIMER_NOMBRE</Name><Value>ANA</Value></AdditionalInformation>
                <AdditionalInformation><Name>MODALIDAD_PAGO</Name><Value>04</Value></AdditionalInformation>
                <AdditionalInformation><Name>COPAGO</Name><Value>5000</Value></AdditionalInformation>
                <AdditionalInformation><Name>NUMERO_CONTRATO</Name><Value>CT-77</Value></AdditionalInformation>
              </Collection>
            </Group>
          </Interoperabilidad>
        </CustomTagGeneral>
      </ext:ExtensionContent>
    </ext:UBLExtension>
  </ext:UBLExtensions>
  <cbc:ID>SETP990000001</cbc:ID>
  <cbc:UUID schemeName="CUFE-SHA384">abc123cufe</cbc:UUID>
  <cbc:IssueDate>2024-03-15</cbc:IssueDate>
  <cac:InvoicePeriod>
    <cbc:StartDate>2024-03-01</cbc:StartDate>
    <cbc:EndDate>2024-03-10</cbc:EndDate>
  </cac:InvoicePeriod>
  <cac:AccountingSupplierParty>
    <cac:Party>
      <cac:PartyTaxScheme><cbc:CompanyID schemeID="7">900123456</cbc:CompanyID></cac:PartyTaxScheme>
    </cac:Party>
  </cac:AccountingSupplierParty>
  <cac:LegalMonetaryTotal>
    <cbc:LineExtensionAmount currencyID="COP">150000.00</cbc:LineExtensionAmount>
    <cbc:TaxInclusiveAmount currencyID="COP">150000.00</cbc:TaxInclusiveAmount>
  </cac:LegalMonetaryTotal>
  <cac:InvoiceLine>
    <cbc:ID>1</cbc:ID>
    <cbc:InvoicedQuantity unitCode="94">2</cbc:InvoicedQuantity>
    <cbc:LineExtensionAmount currencyID="COP">100000.00</cbc:LineExtensionAmount>
    <cac:Item>
      <cbc:Description>CONSULTA MEDICINA GENERAL</cbc:Description>
      <cac:StandardItemIdentification><cbc:ID>890201</cbc:ID></cac:StandardItemIdentification>
    </cac:Item>
    <cac:Price><cbc:PriceAmount currencyID="COP">50000.00</cbc:PriceAmount></cac:Price>
  </cac:InvoiceLine>
  <cac:InvoiceLine>
    <cbc:ID>2</cbc:ID>
    <cbc:InvoicedQuantity unitCode="94">1</cbc:InvoicedQuantity>
    <cbc:LineExtensionAmount currencyID="COP">50000.00</cbc:LineExtensionAmount>
    <cac:Item><cbc:Description>HEMOGRAMA</cbc:Description></cac:Item>
    <cac:Price><cbc:PriceAmount currencyID="COP">50000.00</cbc:PriceAmount></cac:Price>
  </cac:InvoiceLine>
</Invoice>`

const embeddedInvoiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2" ` + ublNamespaces + `>
  <ext:UBLExtensions>
    <ext:UBLExtension>
      <ext:ExtensionContent>
        <AdditionalInformation><Name>NUMERO_AUTORIZACION</Name><Value>AUT-555</Value></AdditionalInformation>
        <CustomField Name="Prefijo" Value="FEV"/>
      </ext:ExtensionContent>
    </ext:UBLExtension>
  </ext:UBLExtensions>
  <cbc:ID>FEV100</cbc:ID>
  <cbc:UUID>cufe-embedded</cbc:UUID>
  <cbc:IssueDate>2024-03-20</cbc:IssueDate>
  <cac:AccountingSupplierParty>
    <cac:Party><cbc:CompanyID>900999888</cbc:CompanyID></cac:Party>
  </cac:AccountingSupplierParty>
  <cac:LegalMonetaryTotal>
    <cbc:LineExtensionAmount currencyID="COP">80000</cbc:LineExtensionAmount>
    <cbc:TaxInclusiveAmount currencyID="COP">95200</cbc:TaxInclusiveAmount>
  </cac:LegalMonetaryTotal>
</Invoice>`

const attachedDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<AttachedDocument xmlns="urn:oasis:names:specification:ubl:schema:xsd:AttachedDocument-2" ` + ublNamespaces + `>
  <ext:UBLExtensions>
    <ext:UBLExtension>
      <ext:ExtensionContent>
        <AdditionalInformation><Name>TIPO_USUARIO</Name><Value>01</Value></AdditionalInformation>
      </ext:ExtensionContent>
    </ext:UBLExtension>
  </ext:UBLExtensions>
  <cbc:ID>AD-1</cbc:ID>
  <cbc:ParentDocumentID>FEV100</cbc:ParentDocumentID>
  <cac:SenderParty>
    <cac:PartyTaxScheme><cbc:CompanyID>800111222</cbc:CompanyID></cac:PartyTaxScheme>
  </cac:SenderParty>
  <cac:Attachment>
    <cac:ExternalReference>
      <cbc:MimeCode>text/xml</cbc:MimeCode>
      <cbc:Description><![CDATA[` + embeddedInvoiceXML + `]]></cbc:Description>
    </cac:ExternalReference>
  </cac:Attachment>
</AttachedDocument>`

const attachedFallbackXML = `<?xml version="1.0" encoding="UTF-8"?>
<AttachedDocument ` + ublNamespaces + `>
  <cbc:UUID>cufe-fallback</cbc:UUID>
  <cbc:IssueDate>2024-04-01</cbc:IssueDate>
  <cbc:ParentDocumentID>FEV200</cbc:ParentDocumentID>
  <cac:SenderParty>
    <cac:PartyTaxScheme><cbc:CompanyID>800111222</cbc:CompanyID></cac:PartyTaxScheme>
  </cac:SenderParty>
  <cac:Attachment>
    <cac:ExternalReference>
      <cbc:Description>Factura adjunta</cbc:Description>
    </cac:ExternalReference>
  </cac:Attachment>
</AttachedDocument>`

const attachedBrokenXML = `<?xml version="1.0" encoding="UTF-8"?>
<AttachedDocument ` + ublNamespaces + `>
  <cbc:ParentDocumentID>FEV300</cbc:ParentDocumentID>
  <cac:Attachment>
    <cac:ExternalReference>
      <cbc:Description><![CDATA[<Invoice xmlns="urn:x"><cbc:ID>broken]]></cbc:Description>
    </cac:ExternalReference>
  </cac:Attachment>
</AttachedDocument>`

const multiInvoiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<Lote ` + ublNamespaces + `>
  <Invoice>
    <cbc:ID>FE1</cbc:ID>
    <cbc:UUID>cufe-1</cbc:UUID>
    <NIT>900111111</NIT>
  </Invoice>
  <Invoice>
    <cbc:Note>borrador sin identificadores</cbc:Note>
  </Invoice>
  <Invoice>
    <NumeroFactura>FE3</NumeroFactura>
    <FechaFactura>2024-01-31</FechaFactura>
  </Invoice>
</Lote>`
