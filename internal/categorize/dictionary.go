package categorize

// Rule maps a category to the keywords that select it. Keyword order is
// significant: the first keyword found wins.
type Rule struct {
	Category string
	Keywords []string
	Custom   bool
}

// Dictionary is an ordered rule set. Earlier rules take precedence.
type Dictionary []Rule

// Transfers is the category assigned to person-to-person transfers.
const Transfers = "Transferencias"

// Predefined returns a fresh copy of the built-in rules.
func Predefined() Dictionary {
	d := make(Dictionary, len(predefined))
	for i, r := range predefined {
		d[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}

	return d
}

// Merge overlays custom rules on d. A custom rule with the name of an
// existing rule replaces it in place; new names are appended in order.
func (d Dictionary) Merge(custom Dictionary) Dictionary {
	out := make(Dictionary, len(d), len(d)+len(custom))
	copy(out, d)

	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.Category] = i
	}

	for _, r := range custom {
		r.Custom = true

		if i, ok := index[r.Category]; ok {
			out[i] = r
			continue
		}

		index[r.Category] = len(out)
		out = append(out, r)
	}

	return out
}

var predefined = Dictionary{
	{Category: "Ingreso - Sueldos", Keywords: []string{
		"SUELDO", "SALARIO", "NOMINA", "PAGO EMPLEADO", "HONORARIOS",
		"REMUNERACION", "TRABAJO", "EMPRESA", "EMPLEADOR", "LIQUIDACION",
		"GRATIFICACION", "AGUINALDO", "BONO VACACIONES",
	}},
	{Category: "Ingreso - Transferencias", Keywords: []string{
		"TRANSFERENCIA RECIBIDA", "DEPOSITO", "ABONO", "INGRESO",
		"PAGO RECIBIDO", "COBRO", "GIRO RECIBIDO", "ENVIO RECIBIDO",
	}},
	{Category: "Ingreso - Otros", Keywords: []string{
		"REINTEGRO", "DEVOLUCION", "INTERESES A FAVOR", "DIVIDENDOS",
		"BONO", "PREMIO", "SUBSIDIO", "PENSION", "JUBILACION", "AFP",
		"ISAPRE DEVOLUCION", "REEMBOLSO",
	}},
	{Category: "Gasto - Alimentos", Keywords: []string{
		"SUPERMERCADO", "MERCADO", "ALMACEN", "PANADERIA", "CARNICERIA",
		"VERDULERIA", "COMIDA", "RESTAURANT", "DELIVERY", "RAPPI", "UBER EATS",
		"JUMBO", "LIDER", "SANTA ISABEL", "TOTTUS", "UNIMARC", "ACUENTA",
		"MALL", "FERIA", "DESPENSA", "MINIMARKET", "BOTILLERIA", "MARISQUERIA",
		"PIZZERIA", "CAFETERIA", "PASTELERIA", "HELADERIA", "FERIA LIBRE",
		"ABARROTES", "PROVEEDORA",
	}},
	{Category: "Gasto - Transporte", Keywords: []string{
		"COMBUSTIBLE", "GASOLINA", "NAFTA", "TAXI", "UBER", "COLECTIVO",
		"SUBTE", "TREN", "PEAJE", "ESTACIONAMIENTO", "PARKING", "METRO",
		"TRANSANTIAGO", "BIP", "COPEC", "SHELL", "PETROBRAS", "ESSO",
		"AUTOBUS", "MICRO", "CABIFY", "DIDI", "REVISION TECNICA", "PERMISO CIRCULACION",
		"SEGURO VEHICULO", "MANTENSION AUTO", "REPUESTOS", "MECANICO",
	}},
	{Category: "Gasto - Servicios", Keywords: []string{
		"LUZ", "AGUA", "GAS", "TELEFONO", "INTERNET", "CABLE", "ELECTRICIDAD",
		"CGE", "CHILQUINTA", "ENEL", "AGUAS ANDINAS", "ESSAL", "METROGAS",
		"LIPIGAS", "ENTEL", "MOVISTAR", "CLARO", "WOM", "VTR", "GTD",
		"DIRECTV", "CNT", "TELEFONICA", "MUNDO PACIFICO", "ESSBIO",
	}},
	{Category: "Gasto - Vivienda", Keywords: []string{
		"ARRIENDO", "ALQUILER", "RENTA", "HIPOTECA", "DIVIDENDO",
		"CONDOMINIO", "ADMINISTRACION", "COMUNIDAD", "GASTOS COMUNES",
		"MANTENSION CASA", "REPARACIONES", "PINTURA", "FERRETERIA",
		"CONSTRUCCION", "MATERIALES",
	}},
	{Category: "Gasto - Salud", Keywords: []string{
		"FARMACIA", "MEDICO", "HOSPITAL", "CLINICA", "CONSULTA",
		"CRUZ VERDE", "SALCOBRAND", "AHUMADA", "FONASA", "ISAPRE",
		"DENTAL", "LABORATORIO", "EXAMEN", "MEDICAMENTOS", "DOCTOR",
		"OFTALMOLOGIA", "CARDIOLOGIA", "PEDIATRA", "PSICOLOGO",
		"KINESIOLOGIA", "RAYOS X", "ECOGRAFIA",
	}},
	{Category: "Gasto - Educación", Keywords: []string{
		"COLEGIO", "UNIVERSIDAD", "INSTITUTO", "CURSO", "MATRICULA",
		"MENSUALIDAD", "LIBROS", "MATERIALES", "ESCUELA", "JARDIN",
		"EDUCACION", "CAPACITACION", "SEMINARIO", "TALLER",
	}},
	{Category: "Gasto - Entretenimiento", Keywords: []string{
		"CINE", "TEATRO", "CONCIERTO", "BAR", "PUB", "DISCOTECA",
		"NETFLIX", "SPOTIFY", "STEAM", "JUEGOS", "GIMNASIO",
		"PISCINA", "CLUB", "DEPORTES", "CANCHA", "SUSCRIPCION",
		"ENTRADAS", "ESPECTACULO",
	}},
	{Category: "Gasto - Compras", Keywords: []string{
		"ROPA", "FALABELLA", "RIPLEY", "PARIS", "HITES", "AMAZON",
		"MERCADOLIBRE", "ZARA", "H&M", "ADIDAS", "NIKE", "ZAPATERIA",
		"ELECTRODOMESTICOS", "MUEBLES", "DECORACION", "PERFUMERIA",
		"JOYERIA", "RELOJERIA", "LIBRERIA", "JUGUETERIA", "COMPRAVENTA",
		"ANGELOCOMPRAVENTAS", "TIENDA", "COMERCIAL", "VENTAS",
	}},
	{Category: "Gasto - Financiero", Keywords: []string{
		"BANCO", "COMISION", "INTERES", "CUOTA", "CREDITO", "PRESTAMO",
		"TARJETA", "MANTENSION", "ANUALIDAD", "SEGURO", "AFP",
		"BANCO CHILE", "BANCO ESTADO", "BCI", "SANTANDER", "ITAU",
		"SCOTIABANK", "CORPBANCA", "HSBC", "FINTUAL", "ADMINISTRADORA",
		"FONDOS", "INVERSION", "MUTUAL", "RENTA FIJA", "RENTA VARIABLE",
	}},
	{Category: Transfers, Keywords: []string{
		"TRANSFERENCIA", "ENVIO", "GIRO", "PAGO A TERCEROS", "ENVIO DINERO",
		"PAGO PERSONA", "TERCERO", "HERNIA", "MAXIMILIANO", "GALLARDO",
		"PEREZ", "GONZALEZ", "RODRIGUEZ", "LOPEZ", "MARTINEZ", "GARCIA",
		"FERNANDEZ", "SANCHEZ", "MORALES", "SILVA", "CASTRO", "ROJAS",
	}},
	{Category: "Retiros", Keywords: []string{
		"CAJERO", "ATM", "RETIRO", "EFECTIVO", "RETIRO CAJERO",
		"CAJERO AUTOMATICO",
	}},
	{Category: "Impuestos y Gobierno", Keywords: []string{
		"SII", "IMPUESTO", "CONTRIBUCIONES", "PATENTE", "TESORERIA",
		"MUNICIPALIDAD", "REGISTRO CIVIL", "NOTARIA", "CONSERVADOR",
	}},
}
